package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/config"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/services"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/utils"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type registerInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username"`
}

// Register creates the account at the identity provider. The response carries
// no session; the email must be verified before the first login.
func (a *AuthController) Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}

	user, err := a.auth.Register(c.Request.Context(), in.Email, in.Password, in.Username)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registered. Check your email to verify your account.",
		"user":    toUserDTO(user),
	})
}

type loginInput struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}
	if in.Email == "" && in.Phone == "" {
		utils.RespondError(c, http.StatusBadRequest,
			errInput("email or phone is required"), config.Production())
		return
	}

	token, user, err := a.auth.Login(c.Request.Context(), in.Email, in.Phone, in.Password)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserDTO(user)})
}

// Logout exists so clients have a place to revoke a session. Our JWTs are
// stateless, so there is nothing to tear down server side yet.
func (a *AuthController) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (a *AuthController) Profile(c *gin.Context) {
	userID := c.GetUint("userID")
	user, err := a.auth.Profile(userID)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, toUserDTO(user))
}

func (a *AuthController) UpdateProfile(c *gin.Context) {
	userID := c.GetUint("userID")
	var patch services.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}

	user, err := a.auth.UpdateProfile(userID, patch)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, toUserDTO(user))
}

type phoneInput struct {
	Phone string `json:"phone" binding:"required"`
}

// SendPhoneOtp serves both first-time phone signup and returning phone login;
// the provider creates the account on verify if none exists.
func (a *AuthController) SendPhoneOtp(c *gin.Context) {
	var in phoneInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}
	if err := a.auth.SendPhoneOtp(c.Request.Context(), in.Phone); err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "code sent"})
}

type verifyOtpInput struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

func (a *AuthController) VerifyPhoneOtp(c *gin.Context) {
	var in verifyOtpInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}

	token, user, err := a.auth.VerifyPhoneOtp(c.Request.Context(), in.Phone, in.Code)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserDTO(user)})
}

type setUsernameInput struct {
	Username string `json:"username" binding:"required,min=3"`
}

// SetUsername is step two of phone signup and runs on the session minted by
// VerifyPhoneOtp. A username conflict fails this step without touching the
// session.
func (a *AuthController) SetUsername(c *gin.Context) {
	userID := c.GetUint("userID")
	var in setUsernameInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}

	user, err := a.auth.SetUsername(userID, in.Username)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, toUserDTO(user))
}

type resendInput struct {
	Email string `json:"email" binding:"required,email"`
}

func (a *AuthController) ResendVerificationEmail(c *gin.Context) {
	var in resendInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}
	if err := a.auth.ResendVerification(c.Request.Context(), in.Email); err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verification email sent"})
}

type inputError string

func (e inputError) Error() string { return string(e) }

func errInput(msg string) error { return inputError(msg) }
