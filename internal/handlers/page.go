package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"smart_kettle/internal/thermal"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

const (
	actionBoil = "boil"
	actionTest = "test"

	noReading = "None"
)

type pageData struct {
	Temperature string
	Message     string
	MinTarget   int
	MaxTarget   int
	Target      int
	Testing     bool
}

// @Summary      Control page
// @Tags         ui
// @Produce      html
// @Success      200
// @Router       / [get]
func (h *Handler) page(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "page_get_status_failed", err)
		return
	}
	minT, maxT := h.services.Kettle.Limits()

	data := pageData{
		Temperature: noReading,
		Message:     st.Message,
		MinTarget:   minT,
		MaxTarget:   maxT,
		Target:      maxT,
		Testing:     st.Mode == thermal.ModeTesting.String(),
	}
	if st.CurrentTempC != nil {
		data.Temperature = strconv.Itoa(*st.CurrentTempC)
	}
	if st.TargetTempC != nil {
		data.Target = *st.TargetTempC
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// @Summary      Submit the control form
// @Description  Invalid input is ignored. Always redirects back to the page.
// @Tags         ui
// @Accept       x-www-form-urlencoded
// @Param        input_temperature  formData  int     true   "Target temperature"
// @Param        action             formData  string  false  "boil (default) or test"  Enums(boil,test)
// @Success      303
// @Router       / [post]
func (h *Handler) submitForm(c *gin.Context) {
	defer c.Redirect(http.StatusSeeOther, "/")

	degrees, err := strconv.Atoi(strings.TrimSpace(c.PostForm("input_temperature")))
	if err != nil {
		if h.log != nil {
			h.log.Debugw("form_dropped", "reason", "bad_temperature", "err", err)
		}
		return
	}

	ctx := c.Request.Context()
	switch strings.ToLower(strings.TrimSpace(c.PostForm("action"))) {
	case "", actionBoil:
		err = h.services.Kettle.SetTarget(ctx, degrees)
	case actionTest:
		err = h.services.Kettle.StartTest(ctx, degrees)
	default:
		if h.log != nil {
			h.log.Debugw("form_dropped", "reason", "unknown_action")
		}
		return
	}
	if err != nil && h.log != nil {
		h.log.Infow("form_command_rejected", "target", degrees, "err", err)
	}
}
