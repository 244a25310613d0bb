package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/config"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/services"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/utils"
)

type NotificationController struct {
	push *services.PushService
}

func NewNotificationController(push *services.PushService) *NotificationController {
	return &NotificationController{push: push}
}

type registerDeviceInput struct {
	Platform string `json:"platform" binding:"required"`
	Token    string `json:"token" binding:"required"`
}

// RegisterDevice binds a device push token to the user so reminders can be
// delivered even when the app is closed.
func (n *NotificationController) RegisterDevice(c *gin.Context) {
	userID := c.GetUint("userID")
	var in registerDeviceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}

	dev, err := n.push.RegisterDevice(userID, in.Platform, in.Token)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"platform": dev.Platform, "enabled": dev.Enabled})
}

type toggleInput struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (n *NotificationController) Toggle(c *gin.Context) {
	userID := c.GetUint("userID")
	var in toggleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}

	if err := n.push.SetEnabled(userID, *in.Enabled); err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": *in.Enabled})
}
