// Package chatbot answers the site's help widget with canned replies.
package chatbot

import "strings"

// Rule maps any of its keywords to a reply.
type Rule struct {
	Keywords []string
	Reply    string
}

const fallbackReply = "I'm not sure I understand. You can ask me about booking appointments, " +
	"our doctors, opening hours, or managing your account."

// DefaultRules are checked in order; the first rule with a keyword in the message wins.
var DefaultRules = []Rule{
	{
		Keywords: []string{"emergency", "urgent", "chest pain", "can't breathe"},
		Reply:    "If this is a medical emergency, call your local emergency number right away. This chat cannot help with emergencies.",
	},
	{
		Keywords: []string{"hello", "hi ", "hey", "good morning", "good evening"},
		Reply:    "Hello! I'm the booking assistant. How can I help you today?",
	},
	{
		Keywords: []string{"cancel"},
		Reply:    "To cancel, open the appointment from your dashboard and change its status to Cancelled.",
	},
	{
		Keywords: []string{"book", "appointment", "schedule"},
		Reply: "To book an appointment:\n" +
			"1. Log in as a patient.\n" +
			"2. Open Appointments and choose a doctor.\n" +
			"3. Pick a free time slot and describe the reason for your visit.",
	},
	{
		Keywords: []string{"doctor", "specialist", "specialty"},
		Reply:    "You can browse our doctors and their specialties on the Doctors page after logging in.",
	},
	{
		Keywords: []string{"hours", "open", "opening"},
		Reply:    "Our clinics are open Monday to Friday, 8:00 to 18:00, and Saturday, 9:00 to 13:00.",
	},
	{
		Keywords: []string{"password", "login", "log in", "sign in", "account"},
		Reply:    "You can change your password from your profile page. If you cannot log in, check that your email is verified.",
	},
	{
		Keywords: []string{"thank"},
		Reply:    "You're welcome! Is there anything else I can help with?",
	},
}

// Bot matches messages against an ordered rule list.
type Bot struct {
	rules []Rule
}

func New(rules []Rule) *Bot {
	return &Bot{rules: rules}
}

// Reply returns the reply of the first matching rule, or a fallback.
func (b *Bot) Reply(message string) string {
	text := " " + strings.ToLower(strings.TrimSpace(message)) + " "
	for _, r := range b.rules {
		for _, k := range r.Keywords {
			if strings.Contains(text, k) {
				return r.Reply
			}
		}
	}
	return fallbackReply
}
