package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/config"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/services"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/utils"
)

type AssistantController struct {
	ai *services.AssistantService
}

func NewAssistantController(ai *services.AssistantService) *AssistantController {
	return &AssistantController{ai: ai}
}

type chatInput struct {
	Message string `json:"message" binding:"required"`
	Context string `json:"context"`
}

func (a *AssistantController) Chat(c *gin.Context) {
	var in chatInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}

	reply, err := a.ai.Chat(c.Request.Context(), in.Message, in.Context)
	if err != nil {
		utils.RespondError(c, http.StatusBadGateway, err, config.Production())
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}
