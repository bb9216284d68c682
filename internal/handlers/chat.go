package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/chatbot"
	"healthcare-booking-server/internal/utils"
)

// ChatHandler serves the help widget.
type ChatHandler struct {
	bot *chatbot.Bot
}

func NewChatHandler(bot *chatbot.Bot) *ChatHandler {
	return &ChatHandler{bot: bot}
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if !utils.BindJSON(c, &req) {
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err))
		return
	}
	utils.Success(c, "", gin.H{"reply": h.bot.Reply(req.Message)})
}
