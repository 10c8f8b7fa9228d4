package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/usecase"
)

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// ---------- subscriptions ----------

type subscriptionCreateRequest struct {
	CustomerID   string `json:"customer_id"`
	PlanID       string `json:"plan_id"`
	BillingCycle string `json:"billing_cycle"`
}

func (s *Server) handleSubscriptionCreate(w http.ResponseWriter, r *http.Request) {
	var req subscriptionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sub, err := s.subUC.Create(r.Context(), usecase.CreateSubscriptionInput{
		CustomerID:   req.CustomerID,
		PlanID:       req.PlanID,
		BillingCycle: model.BillingCycle(req.BillingCycle),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleSubscriptionList(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subUC.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.Subscription `json:"data"`
	}{Data: subs})
}

func (s *Server) handleSubscriptionGet(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subUC.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

type subscriptionUpdateRequest struct {
	PlanID          *string `json:"plan_id"`
	BillingCycle    *string `json:"billing_cycle"`
	AmountCents     *int64  `json:"amount_cents"`
	Status          *string `json:"status"`
	NextPaymentDate *string `json:"next_payment_date"` // RFC 3339
	RenewalDate     *string `json:"renewal_date"`
	PaymentMethod   *string `json:"payment_method"` // rejected if changed
}

func (s *Server) handleSubscriptionUpdate(w http.ResponseWriter, r *http.Request) {
	var req subscriptionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	in := usecase.UpdateSubscriptionInput{
		PlanID:      req.PlanID,
		AmountCents: req.AmountCents,
	}
	if req.BillingCycle != nil {
		c := model.BillingCycle(*req.BillingCycle)
		in.BillingCycle = &c
	}
	if req.Status != nil {
		st := model.SubscriptionStatus(*req.Status)
		in.Status = &st
	}
	if req.PaymentMethod != nil {
		pm := model.ProviderID(*req.PaymentMethod)
		in.PaymentMethod = &pm
	}
	if req.NextPaymentDate != nil {
		t, err := parseRFC3339(*req.NextPaymentDate)
		if err != nil {
			http.Error(w, "Invalid next_payment_date", http.StatusBadRequest)
			return
		}
		in.NextPaymentDate = &t
	}
	if req.RenewalDate != nil {
		t, err := parseRFC3339(*req.RenewalDate)
		if err != nil {
			http.Error(w, "Invalid renewal_date", http.StatusBadRequest)
			return
		}
		in.RenewalDate = &t
	}
	sub, err := s.subUC.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleSubscriptionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sub, err := s.subUC.Delete(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.log.Info().Str("operator", operatorFrom(r.Context())).Str("subscription_id", id).Msg("subscription cancelled by operator")
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleSubscriptionRetry(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subUC.RetryPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleSubscriptionRenew(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subUC.ProcessRenewal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleSubscriptionSuspend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sub, err := s.subUC.Suspend(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.log.Info().Str("operator", operatorFrom(r.Context())).Str("subscription_id", id).Msg("subscription suspended by operator")
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleSubscriptionReactivate(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subUC.Reactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// ---------- customers ----------

type customerRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Company       string `json:"company"`
	Region        string `json:"region"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
}

func (s *Server) handleCustomerCreate(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	c, err := s.custUC.Create(r.Context(), req.Name, req.Email, req.Company, req.Region,
		model.PaymentMethodPreference(req.PaymentMethod))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCustomerList(w http.ResponseWriter, r *http.Request) {
	customers, err := s.custUC.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.Customer `json:"data"`
	}{Data: customers})
}

func (s *Server) handleCustomerGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.custUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCustomerUpdate(w http.ResponseWriter, r *http.Request) {
	c, err := s.custUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Email != "" {
		c.Email = req.Email
	}
	if req.Company != "" {
		c.Company = req.Company
	}
	if req.Region != "" {
		c.Region = req.Region
	}
	if req.PaymentMethod != "" {
		c.PaymentMethod = model.PaymentMethodPreference(req.PaymentMethod)
	}
	if req.Status != "" {
		c.Status = req.Status
	}
	updated, err := s.custUC.Update(r.Context(), c)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCustomerDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.custUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCustomerInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.invUC.ListByCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.Invoice `json:"data"`
	}{Data: invoices})
}

// ---------- plans ----------

type planRequest struct {
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Cycle       string `json:"billing_cycle"`
	StorageGB   int    `json:"storage_gb"`
	BandwidthGB int    `json:"bandwidth_gb"`
	Active      *bool  `json:"active"`
}

func (s *Server) handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p, err := s.planUC.Create(r.Context(), req.Name, req.PriceCents,
		model.BillingCycle(req.Cycle), req.StorageGB, req.BandwidthGB)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handlePlanList(w http.ResponseWriter, r *http.Request) {
	plans, err := s.planUC.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.HostingPlan `json:"data"`
	}{Data: plans})
}

func (s *Server) handlePlanGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.planUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePlanUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := s.planUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.PriceCents > 0 {
		p.PriceCents = req.PriceCents
	}
	if req.Cycle != "" {
		p.Cycle = model.BillingCycle(req.Cycle)
	}
	if req.StorageGB > 0 {
		p.StorageGB = req.StorageGB
	}
	if req.BandwidthGB > 0 {
		p.BandwidthGB = req.BandwidthGB
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	updated, err := s.planUC.Update(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handlePlanDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.planUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------- invoices ----------

func (s *Server) handleInvoiceList(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	invoices, err := s.invUC.List(r.Context(), offset, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []*model.Invoice `json:"data"`
		Limit  int              `json:"limit"`
		Offset int              `json:"offset"`
	}{Data: invoices, Limit: limit, Offset: offset})
}

// ---------- usage ----------

type usageReportRequest struct {
	StorageUsedGB   float64 `json:"storage_used_gb"`
	BandwidthUsedGB float64 `json:"bandwidth_used_gb"`
}

func (s *Server) handleUsageReport(w http.ResponseWriter, r *http.Request) {
	var req usageReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := s.usageUC.Report(r.Context(), chi.URLParam(r, "id"), req.StorageUsedGB, req.BandwidthUsedGB)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSubscriptionUsage(w http.ResponseWriter, r *http.Request) {
	reports, err := s.usageUC.BySubscription(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.UsageReport `json:"data"`
	}{Data: reports})
}

func (s *Server) handleUsageList(w http.ResponseWriter, r *http.Request) {
	records, err := s.usageUC.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.UsageRecord `json:"data"`
	}{Data: records})
}

// ---------- stats ----------

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customers, byStatus, err := s.statsUC.Totals(ctx)
	if err != nil {
		http.Error(w, "Failed to get totals", http.StatusInternalServerError)
		return
	}
	mrr, err := s.statsUC.MonthlyRecurringRevenue(ctx)
	if err != nil {
		http.Error(w, "Failed to get MRR", http.StatusInternalServerError)
		return
	}
	week, month, year, err := s.statsUC.Revenue(ctx)
	if err != nil {
		http.Error(w, "Failed to get revenue", http.StatusInternalServerError)
		return
	}

	response := struct {
		TotalCustomers       int                              `json:"total_customers"`
		SubscriptionsByState map[model.SubscriptionStatus]int `json:"subscriptions_by_status"`
		MRRCents             int64                            `json:"mrr_cents"`
		RevenueCents         struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		} `json:"revenue_cents"`
	}{
		TotalCustomers:       customers,
		SubscriptionsByState: byStatus,
		MRRCents:             mrr,
	}
	response.RevenueCents.Week = week
	response.RevenueCents.Month = month
	response.RevenueCents.Year = year

	writeJSON(w, http.StatusOK, response)
}
