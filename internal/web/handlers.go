// ABOUTME: Dashboard and JSON API handlers for the record store.
// ABOUTME: Mutations publish a change event and redirect so the page re-fetches.
package web

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/healthlog/internal/events"
	"github.com/harperreed/healthlog/internal/models"
	"github.com/harperreed/healthlog/internal/storage"
	"go.uber.org/zap"
)

// formDefaults are the sidebar's initial values.
type formDefaults struct {
	Date         string
	Exercise     int
	Sleep        float64
	MinExercise  int
	MaxExercise  int
	ExerciseStep int
	MinSleep     float64
	MaxSleep     float64
	SleepStep    float64
}

type pageData struct {
	Form          formDefaults
	Moods         []models.Mood
	Notice        string
	Error         string
	Empty         bool
	Summary       models.Summary
	Records       []models.Record
	DeleteDates   []string
	SleepChart    template.HTML
	ExerciseChart template.HTML
}

func newFormDefaults() formDefaults {
	return formDefaults{
		Date:         models.FormatDate(models.Today()),
		Exercise:     models.DefaultExerciseMinutes,
		Sleep:        models.DefaultSleepHours,
		MinExercise:  models.MinExerciseMinutes,
		MaxExercise:  models.MaxExerciseMinutes,
		ExerciseStep: models.ExerciseStep,
		MinSleep:     models.MinSleepHours,
		MaxSleep:     models.MaxSleepHours,
		SleepStep:    models.SleepStep,
	}
}

// loadAll reads the store and refreshes the record gauge.
func (s *Server) loadAll(c *gin.Context) ([]models.Record, error) {
	records, err := s.repo.LoadAll(c.Request.Context())
	if err != nil {
		return nil, err
	}
	s.metrics.SetRecords(len(records))
	return records, nil
}

func (s *Server) handleIndex(c *gin.Context) {
	records, err := s.loadAll(c)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "記録の読み込みに失敗しました: %v", err)
		return
	}

	data := pageData{
		Form:   newFormDefaults(),
		Moods:  models.AllMoods,
		Notice: c.Query("notice"),
		Error:  c.Query("error"),
		Empty:  len(records) == 0,
	}
	if !data.Empty {
		data.Summary = models.Summarize(records)
		data.Records = records
		data.DeleteDates = deleteOptions(records)
		data.SleepChart = lineChart(sleepPoints(records), "時間")
		data.ExerciseChart = barChart(exercisePoints(records), "分")
	}

	c.HTML(http.StatusOK, "index.html", data)
}

// deleteOptions lists record dates newest first.
func deleteOptions(records []models.Record) []string {
	dates := make([]string, 0, len(records))
	for _, r := range records {
		dates = append(dates, r.DateKey())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// parseForm builds a record from the sidebar form. Numbers are clamped;
// only an unparseable value or an unknown mood is rejected.
func parseForm(c *gin.Context) (models.Record, error) {
	date := models.Today()
	if v := strings.TrimSpace(c.PostForm("date")); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return models.Record{}, err
		}
		date = d
	}

	exercise := models.DefaultExerciseMinutes
	if v := strings.TrimSpace(c.PostForm("exercise")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) {
			return models.Record{}, fmt.Errorf("invalid exercise minutes %q", v)
		}
		exercise = int(math.Round(math.Max(math.Min(f, models.MaxExerciseMinutes), models.MinExerciseMinutes)))
	}

	sleep := models.DefaultSleepHours
	if v := strings.TrimSpace(c.PostForm("sleep")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return models.Record{}, fmt.Errorf("invalid sleep hours %q", v)
		}
		sleep = f
	}

	mood := models.AllMoods[0]
	if v := c.PostForm("mood"); v != "" {
		m, err := models.ParseMood(v)
		if err != nil {
			return models.Record{}, err
		}
		mood = m
	}

	return models.NewRecord(date, exercise, sleep, mood, c.PostForm("memo")), nil
}

// redirect sends the browser back to the dashboard with a flash message.
func redirect(c *gin.Context, key, msg string) {
	c.Redirect(http.StatusSeeOther, "/?"+url.Values{key: {msg}}.Encode())
}

func (s *Server) handleUpsertForm(c *gin.Context) {
	r, err := parseForm(c)
	if err != nil {
		redirect(c, "error", err.Error())
		return
	}

	err = s.repo.Upsert(c.Request.Context(), r)
	s.metrics.ObserveMutation(OpUpsert, err)
	if err != nil {
		s.logger.Error("upsert failed", zap.String("date", r.DateKey()), zap.Error(err))
		redirect(c, "error", "記録に失敗しました: "+err.Error())
		return
	}

	s.publish(events.Upserted(r.Date))
	redirect(c, "notice", "記録しました！")
}

func (s *Server) handleDeleteForm(c *gin.Context) {
	date, err := models.ParseDate(c.PostForm("date"))
	if err != nil {
		redirect(c, "error", err.Error())
		return
	}

	err = s.repo.DeleteByDate(c.Request.Context(), date)
	s.metrics.ObserveMutation(OpDelete, err)
	if err != nil {
		s.logger.Error("delete failed", zap.String("date", models.FormatDate(date)), zap.Error(err))
		redirect(c, "error", "削除に失敗しました: "+err.Error())
		return
	}

	s.publish(events.Deleted(date))
	redirect(c, "notice", models.FormatDate(date)+" のデータを削除しました。")
}

func (s *Server) handleExportCSV(c *gin.Context) {
	records, err := s.loadAll(c)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "export failed: %v", err)
		return
	}

	data, err := storage.ExportCSV(records)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "export failed: %v", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+storage.CSVFileName+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *Server) handleListRecords(c *gin.Context) {
	records, err := s.loadAll(c)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	payload := make([]storage.RecordPayload, 0, len(records))
	for _, r := range records {
		payload = append(payload, storage.NewRecordPayload(r))
	}
	c.JSON(http.StatusOK, gin.H{"records": payload})
}

func (s *Server) handleSummary(c *gin.Context) {
	records, err := s.loadAll(c)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.Summarize(records))
}

// upsertRequest is the JSON body for POST /api/records. Omitted numbers take
// the form defaults.
type upsertRequest struct {
	Date     string   `json:"date"`
	Exercise *int     `json:"exercise"`
	Sleep    *float64 `json:"sleep"`
	Mood     string   `json:"mood"`
	Memo     string   `json:"memo"`
}

func (req upsertRequest) record() (models.Record, error) {
	date := models.Today()
	if req.Date != "" {
		d, err := models.ParseDate(req.Date)
		if err != nil {
			return models.Record{}, err
		}
		date = d
	}

	exercise := models.DefaultExerciseMinutes
	if req.Exercise != nil {
		exercise = *req.Exercise
	}
	sleep := models.DefaultSleepHours
	if req.Sleep != nil {
		sleep = *req.Sleep
	}

	mood := models.AllMoods[0]
	if req.Mood != "" {
		m, err := models.ParseMood(req.Mood)
		if err != nil {
			return models.Record{}, err
		}
		mood = m
	}

	return models.NewRecord(date, exercise, sleep, mood, req.Memo), nil
}

func (s *Server) handleUpsertJSON(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := req.record()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = s.repo.Upsert(c.Request.Context(), r)
	s.metrics.ObserveMutation(OpUpsert, err)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.publish(events.Upserted(r.Date))
	c.JSON(http.StatusOK, storage.NewRecordPayload(r))
}

func (s *Server) handleDeleteJSON(c *gin.Context) {
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = s.repo.DeleteByDate(c.Request.Context(), date)
	s.metrics.ObserveMutation(OpDelete, err)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.publish(events.Deleted(date))
	c.Status(http.StatusNoContent)
}

// sleepPoints and exercisePoints project records onto chart series. Records
// arrive sorted, so the first one anchors the day offsets.
func sleepPoints(records []models.Record) []chartPoint {
	return seriesPoints(records, func(r models.Record) float64 { return r.SleepHours })
}

func exercisePoints(records []models.Record) []chartPoint {
	return seriesPoints(records, func(r models.Record) float64 { return float64(r.ExerciseMinutes) })
}

func seriesPoints(records []models.Record, value func(models.Record) float64) []chartPoint {
	pts := make([]chartPoint, 0, len(records))
	if len(records) == 0 {
		return pts
	}
	first := records[0].Date
	for _, r := range records {
		pts = append(pts, chartPoint{
			Label: r.DateKey(),
			Day:   int(math.Round(r.Date.Sub(first).Hours() / 24)),
			Value: value(r),
		})
	}
	return pts
}
