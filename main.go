package main

import "healthcare-booking-server/cmd"

func main() {
	cmd.Execute()
}
