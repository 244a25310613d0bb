package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/config"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/services"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/utils"
)

type MealController struct {
	meals *services.MealService
	stats *services.StatsService
	hub   *services.RealtimeHub
	push  *services.PushService
}

func NewMealController(meals *services.MealService, stats *services.StatsService, hub *services.RealtimeHub, push *services.PushService) *MealController {
	return &MealController{meals: meals, stats: stats, hub: hub, push: push}
}

// notifyChanged tells the user's other sessions to re-fetch: open sockets get
// the hub broadcast, closed apps a best-effort data push.
func (m *MealController) notifyChanged(userID uint) {
	m.hub.BroadcastMealsChanged(userID)
	go m.push.PushToUser(userID, "", "", map[string]string{"kind": "meals.changed"})
}

func (m *MealController) Today(c *gin.Context) {
	userID := c.GetUint("userID")
	meals, err := m.meals.TodayMeals(userID)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}

	out := make([]mealDTO, 0, len(meals))
	for i := range meals {
		out = append(out, toMealDTO(&meals[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (m *MealController) GetByID(c *gin.Context) {
	userID := c.GetUint("userID")
	mealID, err := parseID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errInput("invalid meal id"), config.Production())
		return
	}

	meal, err := m.meals.GetMeal(userID, mealID)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, toMealDTO(meal))
}

type createMealInput struct {
	Name  string                     `json:"name" binding:"required"`
	Items []services.FoodItemRequest `json:"items"`
}

// Create makes the authoritative meal for a name and day. A second create for
// the same name conflicts; the app appends to the existing meal instead.
func (m *MealController) Create(c *gin.Context) {
	userID := c.GetUint("userID")
	var in createMealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}

	meal, err := m.meals.AddMeal(c.Request.Context(), userID, in.Name, in.Items)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	m.notifyChanged(userID)
	c.JSON(http.StatusCreated, toMealDTO(meal))
}

func (m *MealController) AddFood(c *gin.Context) {
	userID := c.GetUint("userID")
	mealID, err := parseID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errInput("invalid meal id"), config.Production())
		return
	}
	var in services.FoodItemRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err, config.Production())
		return
	}

	meal, err := m.meals.AddFood(c.Request.Context(), userID, mealID, in)
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	m.notifyChanged(userID)
	c.JSON(http.StatusOK, toMealDTO(meal))
}

func (m *MealController) RemoveFood(c *gin.Context) {
	userID := c.GetUint("userID")
	mealID, err := parseID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errInput("invalid meal id"), config.Production())
		return
	}
	foodID, err := parseID(c.Param("foodID"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errInput("invalid food id"), config.Production())
		return
	}

	if err := m.meals.RemoveFood(userID, mealID, foodID); err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	m.notifyChanged(userID)
	c.JSON(http.StatusOK, gin.H{"message": "food removed"})
}

func (m *MealController) DailyStats(c *gin.Context) {
	userID := c.GetUint("userID")
	out, err := m.stats.Daily(userID, time.Now())
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, out)
}

func (m *MealController) WeeklyStats(c *gin.Context) {
	userID := c.GetUint("userID")
	out, err := m.stats.Weekly(userID, time.Now())
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, out)
}

func (m *MealController) MonthlyStats(c *gin.Context) {
	userID := c.GetUint("userID")
	out, err := m.stats.Monthly(userID, time.Now())
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, out)
}

func (m *MealController) StatsSummary(c *gin.Context) {
	userID := c.GetUint("userID")
	out, err := m.stats.SummaryRange(userID, time.Now())
	if err != nil {
		utils.RespondError(c, statusFor(err), err, config.Production())
		return
	}
	c.JSON(http.StatusOK, out)
}
