package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/onepunch-tracker/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
	"github.com/comitanigiacomo/onepunch-tracker/internal/core/services"
)

type WorkoutHandler struct {
	svc *services.WorkoutService
}

func NewWorkoutHandler(svc *services.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{
		svc: svc,
	}
}

// formField accepts a JSON string or number and keeps its textual form, so
// the entry form can post either.
type formField string

func (f *formField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = formField(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("expected a number or a string")
	}
	*f = formField(n.String())
	return nil
}

type submitWorkoutRequest struct {
	Date     formField `json:"date"`
	Distance formField `json:"distance"`
	Crunches formField `json:"crunches"`
	Pushups  formField `json:"pushups"`
	Squats   formField `json:"squats"`
	Weight   formField `json:"weight"`
}

func (r submitWorkoutRequest) toForm() domain.WorkoutForm {
	return domain.WorkoutForm{
		Date:     string(r.Date),
		Distance: string(r.Distance),
		Crunches: string(r.Crunches),
		Pushups:  string(r.Pushups),
		Squats:   string(r.Squats),
		Weight:   string(r.Weight),
	}
}

// RegisterRoutes mounts the API. guards run only on the /workouts group.
func (h *WorkoutHandler) RegisterRoutes(router *gin.RouterGroup, guards ...gin.HandlerFunc) {
	workouts := router.Group("/workouts", guards...)
	{
		workouts.POST("", h.Submit)
		workouts.GET("", h.List)
		workouts.DELETE("", h.Clear)
		workouts.GET("/:date", h.Get)
		workouts.DELETE("/:date", h.Delete)
	}

	router.GET("/dashboard", h.Dashboard)
	router.GET("/weight", h.WeightProgress)
	router.GET("/form-defaults", h.FormDefaults)
}

// Submit godoc
// @Summary      Submit the workout form
// @Description  Saves the day's record. A -1 in one activity field deletes that day, in two or more it erases the history.
// @Tags         workouts
// @Accept       json
// @Produce      json
// @Param        form  body      submitWorkoutRequest  true  "Workout form"
// @Success      200   {object}  services.SubmitResult
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /workouts [post]
func (h *WorkoutHandler) Submit(c *gin.Context) {
	var req submitWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.svc.SubmitForm(c.Request.Context(), req.toForm())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// List godoc
// @Summary  Workout history, newest first
// @Tags     workouts
// @Produce  json
// @Success  200  {array}  domain.Workout
// @Router   /workouts [get]
func (h *WorkoutHandler) List(c *gin.Context) {
	workouts, err := h.svc.History(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, workouts)
}

// Get godoc
// @Summary  One day's record
// @Tags     workouts
// @Produce  json
// @Param    date  path      string  true  "YYYY-MM-DD"
// @Success  200   {object}  domain.Workout
// @Failure  404   {object}  map[string]string
// @Router   /workouts/{date} [get]
func (h *WorkoutHandler) Get(c *gin.Context) {
	workout, found, err := h.svc.Get(c.Request.Context(), c.Param("date"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "workout not found"})
		return
	}

	c.JSON(http.StatusOK, workout)
}

// Delete godoc
// @Summary  Delete one day's record
// @Tags     workouts
// @Param    date  path  string  true  "YYYY-MM-DD"
// @Success  204
// @Router   /workouts/{date} [delete]
func (h *WorkoutHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("date")); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Clear godoc
// @Summary  Erase the whole history
// @Tags     workouts
// @Success  204
// @Router   /workouts [delete]
func (h *WorkoutHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Dashboard godoc
// @Summary  Punch score, remaining amounts and progress
// @Tags     stats
// @Produce  json
// @Success  200  {object}  domain.Dashboard
// @Router   /dashboard [get]
func (h *WorkoutHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// WeightProgress godoc
// @Summary  Weight samples, oldest first
// @Tags     stats
// @Produce  json
// @Success  200  {array}  domain.WeightPoint
// @Router   /weight [get]
func (h *WorkoutHandler) WeightProgress(c *gin.Context) {
	points, err := h.svc.WeightProgress(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, points)
}

// FormDefaults godoc
// @Summary  Pre-filled values for a new entry
// @Tags     workouts
// @Produce  json
// @Success  200  {object}  domain.FormDefaults
// @Router   /form-defaults [get]
func (h *WorkoutHandler) FormDefaults(c *gin.Context) {
	defaults, err := h.svc.FormDefaults(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, defaults)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidWorkout) || errors.Is(err, domain.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrStorageCorrupt):
		logrus.WithField("request_id", c.GetString(middleware.ContextRequestIDKey)).
			Errorf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "storage corrupt",
			"message": "stored workout data could not be decoded",
		})

	default:
		logrus.WithField("request_id", c.GetString(middleware.ContextRequestIDKey)).
			Warnf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, retry"})
	}
}
