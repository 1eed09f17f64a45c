package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/positions"
	"fintrack/internal/repository"
)

// InvestmentHandler handles investment, sale, and profile routes. All lot
// mutations go through the position engine.
type InvestmentHandler struct {
	positions      *positions.Engine
	investmentRepo *repository.InvestmentRepository
	saleRepo       *repository.InvestmentSaleRepository
	profileRepo    *repository.InvestmentProfileRepository
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(
	engine *positions.Engine,
	investmentRepo *repository.InvestmentRepository,
	saleRepo *repository.InvestmentSaleRepository,
	profileRepo *repository.InvestmentProfileRepository,
) *InvestmentHandler {
	return &InvestmentHandler{
		positions:      engine,
		investmentRepo: investmentRepo,
		saleRepo:       saleRepo,
		profileRepo:    profileRepo,
	}
}

// List returns open positions, optionally filtered by profile_id.
func (h *InvestmentHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if profileID, ok, err := queryProfileID(r); err != nil {
		respondError(w, err)
		return
	} else if ok {
		investments, err := h.investmentRepo.GetByProfileID(user.ID, profileID)
		if err != nil {
			respondError(w, errors.Internal(err))
			return
		}
		respondJSON(w, http.StatusOK, investments)
		return
	}

	investments, err := h.investmentRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, investments)
}

type investmentRequest struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Symbol        string   `json:"symbol"`
	Quantity      float64  `json:"quantity"`
	PurchasePrice float64  `json:"purchase_price"`
	CurrentPrice  float64  `json:"current_price"`
	PurchaseDate  string   `json:"purchase_date"`
	Strategy      string   `json:"strategy"`
	Target        *float64 `json:"target"`

	// ProfileID distinguishes absent from null: absent preserves the
	// current assignment on update, explicit null clears it.
	ProfileID *int64 `json:"profile_id"`
}

func (req *investmentRequest) toParams(profileSet bool) (positions.InvestmentParams, error) {
	date, err := parseDate(req.PurchaseDate)
	if err != nil {
		return positions.InvestmentParams{}, err
	}
	p := positions.InvestmentParams{
		Name:          middleware.SanitizeString(req.Name),
		Type:          req.Type,
		Symbol:        middleware.SanitizeString(req.Symbol),
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		CurrentPrice:  req.CurrentPrice,
		PurchaseDate:  date,
		Strategy:      middleware.SanitizeString(req.Strategy),
		Target:        req.Target,
	}
	if profileSet {
		p.Profile = positions.SetTo(req.ProfileID)
	}
	return p, nil
}

// decodeInvestment decodes an investment body and reports whether the
// profile_id key was present at all. A plain struct decode cannot tell an
// explicit null (clear the assignment) from an absent key (preserve it).
func decodeInvestment(r *http.Request) (*investmentRequest, bool, error) {
	raw := map[string]json.RawMessage{}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, false, errors.Validation("Invalid request body")
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false, errors.Validation("Invalid request body")
	}
	_, profileSet := raw["profile_id"]

	req := &investmentRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, false, errors.Validation("Invalid request body")
	}
	return req, profileSet, nil
}

// Create opens a new position.
func (h *InvestmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	req, profileSet, err := decodeInvestment(r)
	if err != nil {
		respondError(w, err)
		return
	}
	params, err := req.toParams(profileSet)
	if err != nil {
		respondError(w, err)
		return
	}

	inv, err := h.positions.CreateInvestment(user.ID, params)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

// Update rewrites an open position.
func (h *InvestmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	req, profileSet, err := decodeInvestment(r)
	if err != nil {
		respondError(w, err)
		return
	}
	params, err := req.toParams(profileSet)
	if err != nil {
		respondError(w, err)
		return
	}

	inv, err := h.positions.UpdateInvestment(user.ID, id, params)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// Delete removes an open position without recording a sale.
func (h *InvestmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.positions.DeleteInvestment(user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Sell books a partial or full sale of a position.
func (h *InvestmentHandler) Sell(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Quantity  float64 `json:"quantity"`
		SellPrice float64 `json:"sell_price"`
		SellDate  string  `json:"sell_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	date, err := parseDate(req.SellDate)
	if err != nil {
		respondError(w, err)
		return
	}

	sale, err := h.positions.RecordSale(user.ID, positions.SaleParams{
		InvestmentID: id,
		Quantity:     req.Quantity,
		SellPrice:    req.SellPrice,
		SellDate:     date,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}

// Sales returns closed positions, optionally filtered by the profile
// snapshotted on the sale.
func (h *InvestmentHandler) Sales(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if profileID, ok, err := queryProfileID(r); err != nil {
		respondError(w, err)
		return
	} else if ok {
		sales, err := h.saleRepo.GetByProfileID(user.ID, profileID)
		if err != nil {
			respondError(w, errors.Internal(err))
			return
		}
		respondJSON(w, http.StatusOK, sales)
		return
	}

	sales, err := h.saleRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

// Profiles returns the user's investment profiles, default first.
func (h *InvestmentHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	profiles, err := h.profileRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

// CreateProfile creates an investment profile.
func (h *InvestmentHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	profile, err := h.positions.CreateProfile(user.ID, middleware.SanitizeString(req.Name))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, profile)
}

// SetDefaultProfile makes a profile the user's default.
func (h *InvestmentHandler) SetDefaultProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.positions.SetDefaultProfile(user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "default set"})
}

// DeleteProfile removes a profile, promoting another to default if needed.
func (h *InvestmentHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.positions.DeleteProfile(user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// queryProfileID parses the optional profile_id query parameter.
func queryProfileID(r *http.Request) (int64, bool, error) {
	s := r.URL.Query().Get("profile_id")
	if s == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, errors.Validation("Invalid profile_id")
	}
	return id, true, nil
}
