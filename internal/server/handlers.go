package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/storage"
)

type habitReq struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category"`
	TargetValue float64 `json:"target_value"`
	Unit        string  `json:"unit" binding:"required"`
}

func (r habitReq) habit() models.Habit {
	return models.Habit{
		Name:        r.Name,
		Category:    r.Category,
		TargetValue: r.TargetValue,
		Unit:        r.Unit,
	}
}

type entryReq struct {
	Date              string `json:"date"`
	ProductivityScore int    `json:"productivity_score" binding:"required"`
	MoodScore         int    `json:"mood_score" binding:"required"`
	Notes             string `json:"notes"`
}

type logReq struct {
	HabitID string   `json:"habit_id" binding:"required"`
	Value   *float64 `json:"value" binding:"required"`
	Date    string   `json:"date"`
}

func (s *Server) listHabits(c *gin.Context) {
	habits, err := s.journal.ListHabits(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	ok(c, http.StatusOK, habits)
}

func (s *Server) createHabit(c *gin.Context) {
	var req habitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		paramErr(c, err)
		return
	}
	h, err := s.journal.CreateHabit(c.Request.Context(), userID(c), req.habit())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, h)
}

func (s *Server) getHabit(c *gin.Context) {
	h, err := s.journal.GetHabit(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, h)
}

func (s *Server) updateHabit(c *gin.Context) {
	var req habitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		paramErr(c, err)
		return
	}
	h := req.habit()
	h.ID = c.Param("id")
	updated, err := s.journal.UpdateHabit(c.Request.Context(), userID(c), h)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

func (s *Server) deleteHabit(c *gin.Context) {
	if err := s.journal.DeleteHabit(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) habitStreak(c *gin.Context) {
	ctx := c.Request.Context()
	h, err := s.journal.GetHabit(ctx, userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	st, err := s.streaks.ForHabit(ctx, h.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"habit_id": h.ID, "current": st.Current, "longest": st.Longest})
}

func (s *Server) listEntries(c *gin.Context) {
	entries, err := s.journal.ListEntries(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, entries)
}

func (s *Server) createEntry(c *gin.Context) {
	var req entryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		paramErr(c, err)
		return
	}
	e, err := s.journal.CreateEntry(c.Request.Context(), userID(c), models.DailyEntry{
		Date:              req.Date,
		ProductivityScore: req.ProductivityScore,
		MoodScore:         req.MoodScore,
		Notes:             req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, e)
}

func (s *Server) updateEntry(c *gin.Context) {
	var req entryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		paramErr(c, err)
		return
	}
	e, err := s.journal.UpdateEntry(c.Request.Context(), userID(c), models.DailyEntry{
		ID:                c.Param("id"),
		ProductivityScore: req.ProductivityScore,
		MoodScore:         req.MoodScore,
		Notes:             req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, e)
}

func (s *Server) deleteEntry(c *gin.Context) {
	if err := s.journal.DeleteEntry(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) logHabit(c *gin.Context) {
	var req logReq
	if err := c.ShouldBindJSON(&req); err != nil {
		paramErr(c, err)
		return
	}
	l, created, err := s.journal.LogHabit(c.Request.Context(), userID(c), req.HabitID, *req.Value, req.Date)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, gin.H{"log": l, "created": created})
}

// analytics runs the pipeline for the acting user, or for everyone with scope=all.
func (s *Server) analytics(c *gin.Context) {
	scope := storage.Scope{UserID: userID(c)}
	if strings.EqualFold(c.Query("scope"), "all") {
		scope = storage.Scope{}
	}
	controls := s.opts.Controls.Parse(c.Query)

	report, err := s.engine.AnalyzeAll(c.Request.Context(), scope, controls)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, report)
}
