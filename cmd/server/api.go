package main

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/Simplici0/costcalc/internal/config"
	"github.com/Simplici0/costcalc/internal/export"
	"github.com/Simplici0/costcalc/internal/logger"
	"github.com/Simplici0/costcalc/internal/preset"
	"github.com/Simplici0/costcalc/internal/pricing"
)

const maxBodyBytes = 1 << 20

type server struct {
	presets  *preset.Service
	defaults config.Defaults
	log      *logger.Logger
	validate *validator.Validate
}

func newServer(presets *preset.Service, defaults config.Defaults, log *logger.Logger) *server {
	return &server{
		presets:  presets,
		defaults: defaults,
		log:      log,
		validate: validator.New(),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/machine-rate", s.handleMachineRate)
		r.Post("/price", s.handlePrice)
		r.Post("/price/export/{format}", s.handlePriceExport)
		r.Post("/quantities", s.handleQuantities)
		r.Post("/quantities/export/{format}", s.handleQuantitiesExport)

		r.Get("/presets", s.handlePresetList)
		r.Get("/presets/{name}", s.handlePresetGet)
		r.Put("/presets/{name}", s.handlePresetPut)
		r.Delete("/presets/{name}", s.handlePresetDelete)
	})
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// apiError is a failure that maps onto an HTTP status.
type apiError struct {
	status  int
	field   string
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(err error) *apiError {
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		return &apiError{status: http.StatusBadRequest, field: verr.Field, message: verr.Reason}
	}
	return &apiError{status: http.StatusBadRequest, message: err.Error()}
}

// calculation is the request-scoped state a pricing request is evaluated with.
type calculation struct {
	Input pricing.Input
	Rates *pricing.CostRates
}

// baseCalculation starts from the calculator defaults and overlays the named preset, if any.
func (s *server) baseCalculation(r *http.Request) (calculation, *apiError) {
	calc := calculation{Input: s.defaults.Input()}

	name := r.URL.Query().Get("preset")
	if name == "" {
		return calc, nil
	}

	rec, ok := s.presets.Load(r.Context(), name)
	if !ok {
		return calc, &apiError{status: http.StatusNotFound, field: "preset", message: "preset not found"}
	}
	snap, err := preset.DecodeSnapshot(rec)
	if err != nil {
		s.log.Warnw("unusable preset", "name", name, "error", err)
		return calc, &apiError{status: http.StatusUnprocessableEntity, field: "preset", message: "preset could not be read"}
	}

	calc.Input = snap.Input(calc.Input)
	calc.Rates = snap.Rates()
	return calc, nil
}

type priceRequest struct {
	pricing.Input
	MachineCostDetails *pricing.CostRates `json:"machine_cost_details,omitempty"`
}

type priceResponse struct {
	Input              pricing.Input      `json:"input"`
	MachineCostDetails *pricing.CostRates `json:"machine_cost_details,omitempty"`
	Result             pricing.Result     `json:"result"`
}

func (s *server) priceFromRequest(r *http.Request) (priceResponse, *apiError) {
	calc, apiErr := s.baseCalculation(r)
	if apiErr != nil {
		return priceResponse{}, apiErr
	}

	req := priceRequest{Input: calc.Input}
	if err := decodeBody(r, &req); err != nil {
		return priceResponse{}, badRequest(err)
	}

	if req.MachineCostDetails != nil {
		if err := pricing.ValidateRates(*req.MachineCostDetails); err != nil {
			return priceResponse{}, badRequest(err)
		}
		calc.Rates = req.MachineCostDetails
		req.Input.MachineCostPerHour = pricing.MachineRate(*req.MachineCostDetails)
	}
	calc.Input = req.Input
	calc.Rates = pricing.ConsistentRates(calc.Input.MachineCostPerHour, calc.Rates)

	if err := pricing.Validate(calc.Input); err != nil {
		return priceResponse{}, badRequest(err)
	}

	result := pricing.Calculate(calc.Input)
	if err := pricing.ValidateResult(result); err != nil {
		return priceResponse{}, badRequest(err)
	}

	return priceResponse{
		Input:              calc.Input,
		MachineCostDetails: calc.Rates,
		Result:             result,
	}, nil
}

type quantitiesRequest struct {
	Input         pricing.Input          `json:"input"`
	Setup         pricing.SetupConfig    `json:"setup"`
	DiscountTiers []pricing.DiscountTier `json:"discount_tiers" validate:"max=20"`
	Quantities    []int                  `json:"quantities" validate:"max=50"`
}

type quantitiesResponse struct {
	Input         pricing.Input            `json:"input"`
	Setup         pricing.SetupConfig      `json:"setup"`
	DiscountTiers []pricing.DiscountTier   `json:"discount_tiers"`
	Results       []pricing.QuantityResult `json:"results"`

	table pricing.QuantityTable
}

func (s *server) quantitiesFromRequest(r *http.Request) (quantitiesResponse, *apiError) {
	calc, apiErr := s.baseCalculation(r)
	if apiErr != nil {
		return quantitiesResponse{}, apiErr
	}

	req := quantitiesRequest{Input: calc.Input, Setup: s.defaults.Setup()}
	if err := decodeBody(r, &req); err != nil {
		return quantitiesResponse{}, badRequest(err)
	}
	// Absent lists fall back to the defaults; an explicit empty list is kept.
	if req.DiscountTiers == nil {
		req.DiscountTiers = slices.Clone(s.defaults.DiscountTiers)
	}
	if req.Quantities == nil {
		req.Quantities = slices.Clone(s.defaults.Quantities)
	}
	if err := s.validate.Struct(req); err != nil {
		return quantitiesResponse{}, badRequest(errors.Wrap(err, "invalid quantities request"))
	}

	if err := pricing.ValidateSetup(req.Setup); err != nil {
		return quantitiesResponse{}, badRequest(err)
	}
	if err := pricing.ValidateTiers(req.DiscountTiers); err != nil {
		return quantitiesResponse{}, badRequest(err)
	}
	if err := pricing.ValidateQuantities(req.Quantities); err != nil {
		return quantitiesResponse{}, badRequest(err)
	}

	// Each quantity is priced as its own batch, so the batch size of the
	// input is checked against the largest run.
	check := req.Input
	check.BatchSize = lo.Max(req.Quantities)
	if !check.IncludeLaborSeparately {
		check.LaborCostPerHour = 0
	}
	if err := pricing.Validate(check); err != nil {
		return quantitiesResponse{}, badRequest(err)
	}

	table := pricing.CalculateQuantities(req.Input, req.Setup, req.DiscountTiers, req.Quantities)
	if err := pricing.ValidateQuantityTable(table); err != nil {
		return quantitiesResponse{}, badRequest(err)
	}
	return quantitiesResponse{
		Input:         req.Input,
		Setup:         req.Setup,
		DiscountTiers: req.DiscountTiers,
		Results:       table.Rows(),
		table:         table,
	}, nil
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleMachineRate(w http.ResponseWriter, r *http.Request) {
	var rates pricing.CostRates
	if err := decodeBody(r, &rates); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}
	if err := pricing.ValidateRates(rates); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"machine_cost_details": rates,
		"hourly_rate":          pricing.MachineRate(rates),
	})
}

func (s *server) handlePrice(w http.ResponseWriter, r *http.Request) {
	resp, apiErr := s.priceFromRequest(r)
	if apiErr != nil {
		s.writeError(w, r, apiErr)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *server) handleQuantities(w http.ResponseWriter, r *http.Request) {
	resp, apiErr := s.quantitiesFromRequest(r)
	if apiErr != nil {
		s.writeError(w, r, apiErr)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *server) exportFormat(r *http.Request) (string, *apiError) {
	format := chi.URLParam(r, "format")
	if err := s.validate.Var(format, "required,oneof=csv txt"); err != nil {
		return "", &apiError{status: http.StatusBadRequest, field: "format", message: "format must be csv or txt"}
	}
	return format, nil
}

func (s *server) handlePriceExport(w http.ResponseWriter, r *http.Request) {
	format, apiErr := s.exportFormat(r)
	if apiErr != nil {
		s.writeError(w, r, apiErr)
		return
	}
	resp, apiErr := s.priceFromRequest(r)
	if apiErr != nil {
		s.writeError(w, r, apiErr)
		return
	}

	if format == "txt" {
		writeAttachment(w, "manufacturing_cost_calculation.txt", "text/plain; charset=utf-8",
			[]byte(export.PriceReport(resp.Input, resp.Result, resp.MachineCostDetails)))
		return
	}

	data, err := export.BreakdownCSV(resp.Result)
	if err != nil {
		s.log.Errorw("failed to export price", "error", err)
		s.writeError(w, r, &apiError{status: http.StatusInternalServerError, message: "failed to export price"})
		return
	}
	writeAttachment(w, "manufacturing_cost_calculation.csv", "text/csv; charset=utf-8", data)
}

func (s *server) handleQuantitiesExport(w http.ResponseWriter, r *http.Request) {
	format, apiErr := s.exportFormat(r)
	if apiErr != nil {
		s.writeError(w, r, apiErr)
		return
	}
	resp, apiErr := s.quantitiesFromRequest(r)
	if apiErr != nil {
		s.writeError(w, r, apiErr)
		return
	}

	if format == "txt" {
		writeAttachment(w, "multi_quantity_pricing.txt", "text/plain; charset=utf-8",
			[]byte(export.QuantitiesReport(resp.table)))
		return
	}

	data, err := export.QuantitiesCSV(resp.table)
	if err != nil {
		s.log.Errorw("failed to export quantities", "error", err)
		s.writeError(w, r, &apiError{status: http.StatusInternalServerError, message: "failed to export quantities"})
		return
	}
	writeAttachment(w, "multi_quantity_pricing.csv", "text/csv; charset=utf-8", data)
}

func (s *server) handlePresetList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string][]string{"presets": s.presets.List(r.Context())})
}

// presetName reads and sanitizes the {name} URL parameter.
func presetName(r *http.Request) (string, *apiError) {
	name, err := preset.SanitizeName(chi.URLParam(r, "name"))
	if err != nil {
		return "", &apiError{status: http.StatusBadRequest, field: "name", message: err.Error()}
	}
	return name, nil
}

func (s *server) handlePresetGet(w http.ResponseWriter, r *http.Request) {
	name, apiErr := presetName(r)
	if apiErr != nil {
		s.writeError(w, r, apiErr)
		return
	}
	rec, ok := s.presets.Load(r.Context(), name)
	if !ok {
		s.writeError(w, r, &apiError{status: http.StatusNotFound, message: "preset not found"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, rec)
}

func (s *server) handlePresetPut(w http.ResponseWriter, r *http.Request) {
	name, apiErr := presetName(r)
	if apiErr != nil {
		s.writeError(w, r, apiErr)
		return
	}

	var rec preset.Record
	if err := decodeBody(r, &rec); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}
	if rec == nil {
		rec = preset.Record{}
	}

	if !s.presets.Save(r.Context(), name, rec) {
		s.writeError(w, r, &apiError{status: http.StatusInternalServerError, message: "failed to save preset"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"name": name})
}

func (s *server) handlePresetDelete(w http.ResponseWriter, r *http.Request) {
	name, apiErr := presetName(r)
	if apiErr != nil {
		s.writeError(w, r, apiErr)
		return
	}
	if !s.presets.Delete(r.Context(), name) {
		s.writeError(w, r, &apiError{status: http.StatusNotFound, message: "preset not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "invalid JSON body")
	}
	return nil
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, e *apiError) {
	if e.status >= http.StatusInternalServerError {
		s.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", e.message)
	}
	body := map[string]string{"error": e.message}
	if e.field != "" {
		body["field"] = e.field
	}
	s.writeJSON(w, r, e.status, body)
}

// writeJSON encodes v before sending any header, so an encoding failure
// becomes a 500 instead of a truncated 200.
func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Errorw("failed to encode response", "method", r.Method, "path", r.URL.Path, "error", err)
		status = http.StatusInternalServerError
		data = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
