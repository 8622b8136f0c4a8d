package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/threadline/storefront/internal/backend"
	"github.com/threadline/storefront/internal/cart"
	"github.com/threadline/storefront/internal/customize"
	"github.com/threadline/storefront/internal/domain"
	"github.com/threadline/storefront/internal/notify"
	"github.com/threadline/storefront/internal/platform/httpx"
	"github.com/threadline/storefront/internal/pricing"
	"github.com/threadline/storefront/internal/selection"
	"github.com/threadline/storefront/internal/session"
)

const maxLogoUploadSize = 8 << 20

// CustomizeHandlers drives the selection and logo customization session.
type CustomizeHandlers struct {
	client *backend.Client
}

// NewCustomizeHandlers constructs the customization handlers.
func NewCustomizeHandlers(client *backend.Client) (*CustomizeHandlers, error) {
	if client == nil {
		return nil, errors.New("customize handlers: backend client is required")
	}
	return &CustomizeHandlers{client: client}, nil
}

// Register mounts the customization routes.
func (h *CustomizeHandlers) Register(r chi.Router) {
	r.Post("/start", h.Start)
	r.Get("/state", h.State)
	r.Post("/reset", h.Reset)

	r.Post("/sections/{section}/open", h.OpenSection)
	r.Post("/sections/{section}/product", h.SelectProduct)
	r.Post("/sections/{section}/colors", h.ToggleColor)
	r.Post("/sections/{section}/sizes", h.TrackSize)
	r.Delete("/sections/{section}/sizes/{size}", h.RemoveSize)
	r.Post("/sections/{section}/quantities/increment", h.Increment)
	r.Post("/sections/{section}/quantities/decrement", h.Decrement)

	r.Get("/flow", h.FlowState)
	r.Post("/flow/method", h.FlowMethod)
	r.Post("/flow/position", h.FlowPosition)
	r.Post("/flow/logo-type", h.FlowLogoType)
	r.Post("/flow/text", h.FlowText)
	r.Post("/flow/upload", h.FlowUpload)
	r.Post("/flow/previous-logo", h.FlowPreviousLogo)
	r.Post("/flow/back", h.FlowBack)

	r.Post("/finish", h.Finish)
}

type startRequest struct {
	ProductID string `json:"productId"`
	BundleID  string `json:"bundleId"`
}

// Start opens a customization session for one product or one bundle,
// replacing any session already in flight.
func (h *CustomizeHandlers) Start(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}

	switch {
	case req.BundleID != "":
		bundle, err := clientFor(h.client, sess).Bundle(r.Context(), req.BundleID)
		if err != nil {
			writeBackendError(r.Context(), w, err, "/customize/start")
			return
		}
		orchestrator, err := selection.NewBundle(bundle.Type)
		if err != nil {
			writeToastError(r.Context(), w, "unknown_bundle_type", "this bundle cannot be customized")
			return
		}
		orchestrator.SetBundleID(bundle.ID)
		sess.Do(func() {
			sess.ClearCustomization()
			sess.Bundle = orchestrator
			sess.BundleOffer = &bundle
			sess.Flow = customize.NewFlow()
		})
	case req.ProductID != "":
		product, err := clientFor(h.client, sess).Product(r.Context(), req.ProductID)
		if err != nil {
			writeBackendError(r.Context(), w, err, "/customize/start")
			return
		}
		section := selection.NewSingleSection()
		section.SelectProduct(product)
		sess.Do(func() {
			sess.ClearCustomization()
			sess.Single = section
			sess.Flow = customize.NewFlow()
		})
	default:
		writeToastError(r.Context(), w, "missing_target", "select a product or bundle to customize")
		return
	}

	h.writeState(w, sess)
}

// sectionPayload is the per-slot slice of the state response.
type sectionPayload struct {
	Number    int            `json:"number"`
	ProductID string         `json:"productId,omitempty"`
	Product   string         `json:"product,omitempty"`
	Colors    []string       `json:"colors"`
	Quantity  map[string]int `json:"quantities"`
	Total     int            `json:"total"`
	Required  int            `json:"required"`
	Remaining int            `json:"remaining"`
	MaxColors int            `json:"maxColors"`
	Complete  bool           `json:"complete"`
}

func sectionToPayload(s *selection.Section) sectionPayload {
	payload := sectionPayload{
		Number:    s.Number(),
		Colors:    s.Colors(),
		Quantity:  make(map[string]int),
		Total:     s.Total(),
		Required:  s.Required(),
		Remaining: s.Remaining(),
		MaxColors: s.MaxColors(),
		Complete:  s.IsComplete(),
	}
	if product, ok := s.Product(); ok {
		payload.ProductID = product.ID
		payload.Product = product.Title
	}
	for key, qty := range s.Selection().Quantities {
		payload.Quantity[string(key)] = qty
	}
	return payload
}

func (h *CustomizeHandlers) writeState(w http.ResponseWriter, sess *session.Session) {
	var payload map[string]any
	sess.Do(func() {
		switch {
		case sess.Bundle != nil:
			sections := make([]sectionPayload, 0, len(sess.Bundle.Sections()))
			for _, s := range sess.Bundle.Sections() {
				sections = append(sections, sectionToPayload(s))
			}
			payload = map[string]any{
				"mode":             "bundle",
				"bundleId":         sess.Bundle.BundleID(),
				"bundleType":       sess.Bundle.Type(),
				"sections":         sections,
				"openSection":      sess.Bundle.OpenSection(),
				"complete":         sess.Bundle.AllSectionsComplete(),
				"canProceedToLogo": sess.Bundle.CanProceedToLogoStep(),
			}
		case sess.Single != nil:
			payload = map[string]any{
				"mode":             "single",
				"sections":         []sectionPayload{sectionToPayload(sess.Single)},
				"openSection":      1,
				"complete":         sess.Single.IsComplete(),
				"canProceedToLogo": sess.Single.IsComplete(),
			}
		default:
			payload = map[string]any{"mode": "idle"}
		}
		if sess.Flow != nil {
			payload["flowStep"] = sess.Flow.Step()
		}
	})
	writeJSONResponse(w, http.StatusOK, payload)
}

// State returns the full customization snapshot.
func (h *CustomizeHandlers) State(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	h.writeState(w, sess)
}

// Reset clears every section and reopens section 1.
func (h *CustomizeHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	sess.Do(func() {
		if sess.Bundle != nil {
			sess.Bundle.ResetAll()
		}
		if sess.Single != nil {
			sess.Single.Reset()
		}
		if sess.Flow != nil {
			sess.Flow.Reset()
		}
	})
	h.writeState(w, sess)
}

// sectionFor resolves the section addressed by the URL, under the session lock.
func sectionFor(sess *session.Session, number int) (*selection.Section, error) {
	if sess.Bundle != nil {
		return sess.Bundle.Section(number)
	}
	if sess.Single != nil {
		if number != 1 {
			return nil, selection.ErrUnknownSection
		}
		return sess.Single, nil
	}
	return nil, errNoCustomization
}

var errNoCustomization = errors.New("handlers: no customization in progress")

func sectionParam(r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "section"))
	return number, err == nil && number > 0
}

// withSection runs fn against the addressed section under the session lock and
// maps the selection errors to response envelopes.
func (h *CustomizeHandlers) withSection(w http.ResponseWriter, r *http.Request, fn func(s *selection.Section) error) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	number, ok := sectionParam(r)
	if !ok {
		writeToastError(r.Context(), w, "invalid_section", "unknown section")
		return
	}

	var err error
	sess.Do(func() {
		var section *selection.Section
		section, err = sectionFor(sess, number)
		if err != nil {
			return
		}
		err = fn(section)
	})
	if err != nil {
		h.writeSelectionError(w, r, err, number)
		return
	}
	h.writeState(w, sess)
}

func (h *CustomizeHandlers) writeSelectionError(w http.ResponseWriter, r *http.Request, err error, number int) {
	switch {
	case errors.Is(err, errNoCustomization):
		writeToastError(r.Context(), w, "no_session", "start customizing a product or bundle first")
	case errors.Is(err, selection.ErrUnknownSection):
		writeToastError(r.Context(), w, "invalid_section", "unknown section")
	case errors.Is(err, selection.ErrNoProduct):
		writeToastError(r.Context(), w, "no_product", "choose a product for "+sectionLabel(number)+" first")
	case errors.Is(err, selection.ErrColorNotSelected):
		writeToastError(r.Context(), w, "color_not_selected", "select the colour before adding sizes")
	case errors.Is(err, selection.ErrColorHasQuantity):
		writeToastError(r.Context(), w, "color_in_use", "clear the colour's sizes before removing it")
	case errors.Is(err, selection.ErrMaxColors):
		writeToastError(r.Context(), w, "max_colors", "maximum colours reached for "+sectionLabel(number))
	case errors.Is(err, selection.ErrSectionFull):
		writeToastError(r.Context(), w, "section_full", sectionLabel(number)+" already has its full quantity")
	case errors.Is(err, selection.ErrOutOfStock):
		writeToastError(r.Context(), w, "out_of_stock", "that size is out of stock")
	default:
		httpx.WriteError(r.Context(), w, httpx.NewError("selection_failed", err.Error(), http.StatusUnprocessableEntity))
	}
}

// OpenSection expands one accordion section.
func (h *CustomizeHandlers) OpenSection(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	number, ok := sectionParam(r)
	if !ok {
		writeToastError(r.Context(), w, "invalid_section", "unknown section")
		return
	}

	var err error
	sess.Do(func() {
		if sess.Bundle == nil {
			err = errNoCustomization
			return
		}
		err = sess.Bundle.SetOpenSection(number)
	})
	if err != nil {
		h.writeSelectionError(w, r, err, number)
		return
	}
	h.writeState(w, sess)
}

type selectProductRequest struct {
	ProductID string `json:"productId"`
}

// SelectProduct picks the product for a bundle section. The first pick wins;
// repeats are acknowledged without changing anything.
func (h *CustomizeHandlers) SelectProduct(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req selectProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		writeToastError(r.Context(), w, "missing_product", "a product id is required")
		return
	}
	number, ok := sectionParam(r)
	if !ok {
		writeToastError(r.Context(), w, "invalid_section", "unknown section")
		return
	}

	var err error
	sess.Do(func() {
		var section *selection.Section
		section, err = sectionFor(sess, number)
		if err != nil {
			return
		}
		if _, picked := section.Product(); picked {
			// First-write-wins: the repeat select is a no-op, not an error.
			return
		}
		if sess.BundleOffer == nil {
			err = errNoCustomization
			return
		}
		for _, product := range sess.BundleOffer.Products {
			if product.ID == req.ProductID {
				section.SelectProduct(product)
				return
			}
		}
		err = fmt.Errorf("%w: product %s is not part of this bundle", selection.ErrNoProduct, req.ProductID)
	})
	if err != nil {
		h.writeSelectionError(w, r, err, number)
		return
	}
	h.writeState(w, sess)
}

type colorRequest struct {
	Color string `json:"color"`
}

// ToggleColor adds or removes a colour for the section.
func (h *CustomizeHandlers) ToggleColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if strings.TrimSpace(req.Color) == "" {
		writeToastError(r.Context(), w, "missing_color", "a colour is required")
		return
	}
	h.withSection(w, r, func(s *selection.Section) error {
		_, err := s.ToggleColor(strings.TrimSpace(req.Color))
		return err
	})
}

type sizeRequest struct {
	Size string `json:"size"`
}

// TrackSize registers a size at quantity zero for every selected colour.
func (h *CustomizeHandlers) TrackSize(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if strings.TrimSpace(req.Size) == "" {
		writeToastError(r.Context(), w, "missing_size", "a size is required")
		return
	}
	h.withSection(w, r, func(s *selection.Section) error {
		s.TrackSize(strings.TrimSpace(req.Size))
		return nil
	})
}

// RemoveSize drops a size across every colour of the section.
func (h *CustomizeHandlers) RemoveSize(w http.ResponseWriter, r *http.Request) {
	size := strings.TrimSpace(chi.URLParam(r, "size"))
	if size == "" {
		writeToastError(r.Context(), w, "missing_size", "a size is required")
		return
	}
	h.withSection(w, r, func(s *selection.Section) error {
		s.RemoveSize(size)
		return nil
	})
}

type quantityRequest struct {
	Color string `json:"color"`
	Size  string `json:"size"`
}

// Increment raises the quantity for a colour/size pair by one.
func (h *CustomizeHandlers) Increment(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	h.withSection(w, r, func(s *selection.Section) error {
		_, err := s.Increment(strings.TrimSpace(req.Color), strings.TrimSpace(req.Size))
		return err
	})
}

// Decrement lowers the quantity for a colour/size pair by one, floored at zero.
func (h *CustomizeHandlers) Decrement(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	h.withSection(w, r, func(s *selection.Section) error {
		s.Decrement(strings.TrimSpace(req.Color), strings.TrimSpace(req.Size))
		return nil
	})
}

// withFlow runs fn against the session's flow, gating entry on a complete
// selection: the logo flow is unreachable until every section is fulfilled.
func (h *CustomizeHandlers) withFlow(w http.ResponseWriter, r *http.Request, fn func(f *customize.Flow) error) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var err error
	sess.Do(func() {
		if sess.Flow == nil {
			err = errNoCustomization
			return
		}
		if !canProceedToLogo(sess) {
			err = errSelectionIncomplete
			return
		}
		err = fn(sess.Flow)
	})
	if err != nil {
		h.writeFlowError(w, r, err)
		return
	}
	h.writeFlowState(w, sess)
}

var errSelectionIncomplete = errors.New("handlers: selection incomplete")

func canProceedToLogo(sess *session.Session) bool {
	if sess.Bundle != nil {
		return sess.Bundle.CanProceedToLogoStep()
	}
	if sess.Single != nil {
		return sess.Single.IsComplete()
	}
	return false
}

func (h *CustomizeHandlers) writeFlowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errNoCustomization):
		writeToastError(r.Context(), w, "no_session", "start customizing a product or bundle first")
	case errors.Is(err, errSelectionIncomplete):
		writeToastError(r.Context(), w, "selection_incomplete", "complete every section before adding a logo")
	case errors.Is(err, customize.ErrInvalidStep):
		writeToastError(r.Context(), w, "wrong_step", "that input does not belong to the current step")
	case errors.Is(err, customize.ErrInvalidMethod),
		errors.Is(err, customize.ErrInvalidPosition),
		errors.Is(err, customize.ErrInvalidLogoType):
		writeToastError(r.Context(), w, "invalid_choice", err.Error())
	case errors.Is(err, customize.ErrIncomplete):
		writeToastError(r.Context(), w, "details_missing", "fill in the required details before finishing")
	case errors.Is(err, customize.ErrAtStart):
		writeToastError(r.Context(), w, "at_first_step", "already at the first step")
	default:
		httpx.WriteError(r.Context(), w, httpx.NewError("flow_failed", err.Error(), http.StatusUnprocessableEntity))
	}
}

func (h *CustomizeHandlers) writeFlowState(w http.ResponseWriter, sess *session.Session) {
	var payload map[string]any
	sess.Do(func() {
		if sess.Flow == nil {
			payload = map[string]any{"step": nil}
			return
		}
		data := sess.Flow.Data()
		payload = map[string]any{
			"step":         sess.Flow.Step(),
			"method":       data.Method,
			"position":     data.Position,
			"logoType":     data.LogoType,
			"textLine":     data.TextLine,
			"font":         data.Font,
			"notes":        data.Notes,
			"hasUpload":    data.UploadRef != "",
			"previousLogo": data.PreviousLogoURL,
		}
	})
	writeJSONResponse(w, http.StatusOK, payload)
}

// FlowState returns the logo flow's current step and entered data.
func (h *CustomizeHandlers) FlowState(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	h.writeFlowState(w, sess)
}

// FlowMethod records the decoration method.
func (h *CustomizeHandlers) FlowMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string `json:"method"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	h.withFlow(w, r, func(f *customize.Flow) error {
		return f.SelectMethod(domain.LogoMethod(strings.TrimSpace(req.Method)))
	})
}

// FlowPosition records the logo placement.
func (h *CustomizeHandlers) FlowPosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position string `json:"position"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	h.withFlow(w, r, func(f *customize.Flow) error {
		return f.SelectPosition(req.Position)
	})
}

// FlowLogoType branches into the text or upload details step.
func (h *CustomizeHandlers) FlowLogoType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	h.withFlow(w, r, func(f *customize.Flow) error {
		return f.ChooseLogoType(customize.LogoType(strings.TrimSpace(req.Type)))
	})
}

// FlowText stores the text branch details.
func (h *CustomizeHandlers) FlowText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TextLine string `json:"textLine"`
		Font     string `json:"font"`
		Notes    string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	h.withFlow(w, r, func(f *customize.Flow) error {
		return f.SetTextDetails(req.TextLine, req.Font, req.Notes)
	})
}

// FlowUpload records that a logo file will accompany the finish request.
func (h *CustomizeHandlers) FlowUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileName string `json:"fileName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if strings.TrimSpace(req.FileName) == "" {
		writeToastError(r.Context(), w, "missing_file", "a file name is required")
		return
	}
	h.withFlow(w, r, func(f *customize.Flow) error {
		return f.SetUploadRef(req.FileName)
	})
}

// FlowPreviousLogo records reuse of an earlier logo.
func (h *CustomizeHandlers) FlowPreviousLogo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LogoURL string `json:"logoUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if strings.TrimSpace(req.LogoURL) == "" {
		writeToastError(r.Context(), w, "missing_logo", "a previous logo url is required")
		return
	}
	h.withFlow(w, r, func(f *customize.Flow) error {
		return f.SetPreviousLogo(req.LogoURL)
	})
}

// FlowBack steps the flow back one screen, keeping entered data.
func (h *CustomizeHandlers) FlowBack(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var err error
	sess.Do(func() {
		if sess.Flow == nil {
			err = errNoCustomization
			return
		}
		err = sess.Flow.Back()
	})
	if err != nil {
		h.writeFlowError(w, r, err)
		return
	}
	h.writeFlowState(w, sess)
}

// Finish validates the flow, prices the selection into cart lines, and
// submits them to the backend one at a time. When a line fails mid-way, the
// lines already created stay in the cart and the response reports both the
// committed lines and the failure.
func (h *CustomizeHandlers) Finish(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	file, err := h.logoFile(r)
	if err != nil {
		writeToastError(r.Context(), w, "invalid_upload", "the logo upload could not be read")
		return
	}

	var lines []domain.CartLine
	var flowErr error
	sess.Do(func() {
		if sess.Flow == nil || (sess.Bundle == nil && sess.Single == nil) {
			flowErr = errNoCustomization
			return
		}
		if !canProceedToLogo(sess) {
			flowErr = errSelectionIncomplete
			return
		}
		var done customize.Customization
		done, flowErr = sess.Flow.Finish()
		if flowErr != nil {
			return
		}
		if done.NewUpload() && file == nil {
			flowErr = fmt.Errorf("%w: the logo file is missing from the request", customize.ErrIncomplete)
			return
		}
		lines = buildCartLines(sess, done)
	})
	if flowErr != nil {
		h.writeFlowError(w, r, flowErr)
		return
	}
	if len(lines) == 0 {
		writeToastError(r.Context(), w, "nothing_selected", "there is nothing to add to the cart")
		return
	}

	submitter := cart.NewSubmitter(clientFor(h.client, sess))
	committed, submitErr := submitter.Submit(r.Context(), lines, file)

	sess.Do(func() {
		for _, line := range committed {
			sess.State.Cart().Append(line)
		}
		if submitErr == nil {
			sess.ClearCustomization()
		}
	})

	if submitErr != nil {
		httpx.WriteError(r.Context(), w,
			httpx.NewError("partial_submit", "some items could not be added", http.StatusBadGateway).
				WithDetails(map[string]any{
					"committed": committed,
					"toast":     notify.Error(fmt.Sprintf("%d of %d items were added; please retry the rest", len(committed), len(lines))),
				}))
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"lines": committed,
		"toast": notify.OK("added to your cart"),
	})
}

// logoFile extracts the multipart logo upload, when the request carries one.
func (h *CustomizeHandlers) logoFile(r *http.Request) (*backend.LogoFile, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return nil, nil
	}
	if err := r.ParseMultipartForm(maxLogoUploadSize); err != nil {
		return nil, err
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return &backend.LogoFile{Name: header.Filename, Content: file}, nil
}

// buildCartLines prices the finished customization. Bundles become one line;
// single products become one line per colour/size pick in selection order.
func buildCartLines(sess *session.Session, done customize.Customization) []domain.CartLine {
	if sess.Bundle != nil && sess.BundleOffer != nil {
		snapshot := sess.Bundle.Selection()
		in := pricing.LineInput{
			ProductID:       snapshot.BundleID,
			Title:           sess.BundleOffer.Title,
			BasePrice:       sess.BundleOffer.Price,
			Method:          done.Method,
			Position:        done.Position,
			TextLine:        done.TextLine,
			Font:            done.Font,
			Notes:           done.Notes,
			NewUpload:       done.NewUpload(),
			PreviousLogoURL: done.PreviousLogoURL,
			IsBundle:        true,
			BundleProducts:  snapshot.Sections,
		}
		// A bundle is one cart line; the per-garment sizes live inside
		// BundleProducts.
		return pricing.BuildLines(in, []pricing.SizePick{{Quantity: 1}})
	}

	if sess.Single == nil {
		return nil
	}
	product, ok := sess.Single.Product()
	if !ok {
		return nil
	}

	var lines []domain.CartLine
	for _, key := range sess.Single.Keys() {
		qty, _ := sess.Single.Quantity(key.Color(), key.Size())
		if qty == 0 {
			continue
		}
		in := pricing.LineInput{
			ProductID:       product.ID,
			Title:           product.Title,
			BasePrice:       product.Price,
			Color:           key.Color(),
			Method:          done.Method,
			Position:        done.Position,
			TextLine:        done.TextLine,
			Font:            done.Font,
			Notes:           done.Notes,
			NewUpload:       done.NewUpload() && len(lines) == 0,
			PreviousLogoURL: done.PreviousLogoURL,
		}
		lines = append(lines, pricing.BuildLines(in, []pricing.SizePick{{Size: key.Size(), Quantity: qty}})...)
	}
	return markReusedLines(lines, done)
}

// markReusedLines flags every line after the first as reusing the uploaded
// logo, matching how the submitter threads the first response's URL. The
// prices already carry the embroidery-only charge for these lines.
func markReusedLines(lines []domain.CartLine, done customize.Customization) []domain.CartLine {
	if !done.NewUpload() {
		return lines
	}
	for i := range lines {
		if i > 0 {
			lines[i].UsePreviousLogo = true
		}
	}
	return lines
}
