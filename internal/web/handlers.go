package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/msbatch/internal/batch"
	"github.com/hpungsan/msbatch/internal/instrument"
	"github.com/hpungsan/msbatch/internal/ops"
	"github.com/hpungsan/msbatch/internal/sequence"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	env      *ops.Env
	renderer *Renderer
}

// HandleList handles GET /templates: list stored templates.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListTemplates(r.Context(), h.env, ops.ListTemplatesInput{
		Limit:  parseIntParam(r, "limit", 20),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData:   h.pageData("Templates", "templates"),
		Items:      result.Items,
		Pagination: result.Pagination,
		Deleted:    r.URL.Query().Get("deleted"),
	})
}

// HandleDetail handles GET /templates/{name}: show a template and the
// worklist it produces on the selected instrument.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	fetched, err := ops.FetchTemplate(r.Context(), h.env, ops.FetchTemplateInput{Name: name})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	b := h.previewBatch(r, name)
	preview, err := ops.Preview(r.Context(), h.env, ops.PreviewInput{Batch: b, Format: ops.FormatHTML})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData:     h.pageData(name, "templates"),
		Template:     fetched,
		SampleTypes:  sampleTypeRows(fetched),
		Instruments:  instrument.Names(),
		Instrument:   b.Instrument,
		Project:      b.Project,
		Preview:      preview,
		RenderedHTML: template.HTML(preview.Content),
		DownloadURL:  worklistURL(name, b),
	})
}

// HandleWorklist handles GET /templates/{name}/worklist.csv: download the
// instrument CSV of a template.
func (h *Handlers) HandleWorklist(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	b := h.previewBatch(r, name)

	var header *bool
	if r.URL.Query().Has("header") {
		v := parseBoolParam(r, "header")
		header = &v
	}

	// Buffer so an error can still be reported with a proper status.
	var buf bytes.Buffer
	if _, err := ops.WriteWorklist(r.Context(), h.env, ops.WriteWorklistInput{Batch: b, IncludeHeader: header}, &buf); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	filename := ops.FileStem(name) + "-" + ops.FileStem(b.Instrument) + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleDelete handles DELETE /templates/{name} and the form fallback
// POST /templates/{name}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	result, err := ops.DeleteTemplate(r.Context(), h.env, ops.DeleteTemplateInput{Name: name})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/templates?deleted="+url.QueryEscape(result.Name), http.StatusSeeOther)
}

// HandleInstruments handles GET /instruments: list worklist profiles.
func (h *Handlers) HandleInstruments(w http.ResponseWriter, r *http.Request) {
	result := ops.ListInstruments()
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderer.renderPage(w, "instruments", InstrumentsPageData{
		PageData:    h.pageData("Instruments", "instruments"),
		Instruments: result.Instruments,
	})
}

func (h *Handlers) pageData(title, nav string) PageData {
	return PageData{Title: title, Version: h.renderer.version, Nav: nav}
}

// previewBatch builds the batch for a template preview from the query:
// instrument (default: configured, else first known) and project.
func (h *Handlers) previewBatch(r *http.Request, name string) *batch.Batch {
	q := r.URL.Query()
	inst := q.Get("instrument")
	if inst == "" && h.env.Config != nil {
		inst = h.env.Config.DefaultInstrument
	}
	if inst == "" {
		if names := instrument.Names(); len(names) > 0 {
			inst = names[0]
		}
	}
	return &batch.Batch{
		Template:   name,
		Instrument: inst,
		Project:    strings.TrimSpace(q.Get("project")),
	}
}

// SampleTypeRow is one category line of the detail page.
type SampleTypeRow struct {
	Category string
	Enabled  bool
	Count    int
	Rule     string
	Interval int
}

func sampleTypeRows(t *ops.FetchTemplateOutput) []SampleTypeRow {
	var rows []SampleTypeRow
	for _, c := range sequence.Categories {
		for key, st := range t.Template.SampleTypes {
			if parsed, err := sequence.ParseCategory(key); err != nil || parsed != c {
				continue
			}
			rows = append(rows, SampleTypeRow{
				Category: c.String(),
				Enabled:  st.Enabled,
				Count:    st.Count,
				Rule:     st.Rule,
				Interval: st.Interval,
			})
			break
		}
	}
	return rows
}

func worklistURL(name string, b *batch.Batch) string {
	v := url.Values{}
	v.Set("instrument", b.Instrument)
	if b.Project != "" {
		v.Set("project", b.Project)
	}
	return "/templates/" + url.PathEscape(name) + "/worklist.csv?" + v.Encode()
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
