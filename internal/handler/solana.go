package handler

import (
	"errors"
	"net/http"

	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/session"
	"github.com/AlexZinkM/wallet-consolidator/solana"

	"github.com/rs/zerolog"
)

// SolanaHandler serves the wallet and migration API. Operations that touch
// key material use the password held by the unlocked session.
type SolanaHandler struct {
	svc      *solana.Service
	sessions *session.Manager
	log      zerolog.Logger
}

// NewSolanaHandler creates a new SolanaHandler
func NewSolanaHandler(svc *solana.Service, sessions *session.Manager, log zerolog.Logger) *SolanaHandler {
	return &SolanaHandler{
		svc:      svc,
		sessions: sessions,
		log:      log,
	}
}

// Unlock handles POST /session/unlock
// @Summary      Unlock session
// @Description  Verifies the master password and keeps it in memory until lock or inactivity timeout
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request  body      model.UnlockRequest  true  "Master password"
// @Success      200      {object}  model.SessionResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /session/unlock [post]
func (h *SolanaHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req model.UnlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	password := []byte(req.Password)
	defer clear(password) // Always clear password from memory

	if err := h.svc.VerifyPassword(r.Context(), password); err != nil {
		writeError(w, err)
		return
	}
	h.sessions.Unlock(password)
	h.log.Info().Msg("session unlocked")

	writeJSON(w, http.StatusOK, model.SessionResponse{Locked: false})
}

// Lock handles POST /session/lock
// @Summary      Lock session
// @Description  Wipes the master password from memory
// @Tags         session
// @Produce      json
// @Success      200  {object}  model.SessionResponse
// @Router       /session/lock [post]
func (h *SolanaHandler) Lock(w http.ResponseWriter, r *http.Request) {
	h.sessions.Lock()
	h.log.Info().Msg("session locked")
	writeJSON(w, http.StatusOK, model.SessionResponse{Locked: true})
}

// ListWallets handles GET /wallets
// @Summary      List wallets
// @Description  Lists stored wallets without key material
// @Tags         wallets
// @Produce      json
// @Success      200  {array}  model.WalletSummary
// @Router       /wallets [get]
func (h *SolanaHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.svc.ListWallets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallets)
}

// Generate handles POST /wallets
// @Summary      Generate new wallet
// @Description  Generates a new keypair and stores it encrypted with the session password
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.GenerateRequest  true  "Wallet name"
// @Success      201      {object}  model.GenerateResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /wallets [post]
func (h *SolanaHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	password, err := h.sessions.Password()
	if err != nil {
		writeError(w, err)
		return
	}
	defer clear(password)

	record, qr, err := h.svc.GenerateWallet(r.Context(), req.Name, password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.GenerateResponse{
		Success: true,
		Message: "Wallet generated successfully",
		Wallet:  record.Summary(),
		QR:      qr,
	})
}

// Import handles POST /wallets/import
// @Summary      Import wallet
// @Description  Imports a base58 encoded 64-byte secret key
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportRequest  true  "Wallet name and secret key"
// @Success      201      {object}  model.GenerateResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallets/import [post]
func (h *SolanaHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req model.ImportRequest
	defer func() { clear(req.SecretKey) }()
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	password, err := h.sessions.Password()
	if err != nil {
		writeError(w, err)
		return
	}
	defer clear(password)

	record, err := h.svc.ImportWallet(r.Context(), req.Name, req.SecretKey, password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.GenerateResponse{
		Success: true,
		Message: "Wallet imported successfully",
		Wallet:  record.Summary(),
	})
}

// Rename handles PATCH /wallets/{id}
// @Summary      Rename wallet
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Wallet id"
// @Param        request  body      model.RenameRequest  true  "New name"
// @Success      200      {object}  model.WalletSummary
// @Failure      404      {object}  model.ErrorResponse
// @Router       /wallets/{id} [patch]
func (h *SolanaHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req model.RenameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	summary, err := h.svc.RenameWallet(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Delete handles DELETE /wallets/{id}
// @Summary      Delete wallet
// @Description  Permanently removes the wallet and its encrypted key
// @Tags         wallets
// @Param        id  path  string  true  "Wallet id"
// @Success      204
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{id} [delete]
func (h *SolanaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteWallet(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance handles GET /wallets/{id}/balance
// @Summary      Get wallet balance
// @Description  Gets SOL balance and non-empty SPL token holdings
// @Tags         wallets
// @Produce      json
// @Param        id   path      string  true  "Wallet id"
// @Success      200  {object}  model.BalanceResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{id}/balance [get]
func (h *SolanaHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.GetBalances(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// MigrateSingle handles POST /migrate/single
// @Summary      Migrate one wallet
// @Description  Moves the selected tokens and SOL of a stored wallet in one transaction signed with its vault key
// @Tags         migrate
// @Accept       json
// @Produce      json
// @Param        request  body      model.MigrationRequest  true  "Migration selection"
// @Success      200      {object}  model.MigrationResult
// @Failure      400      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Router       /migrate/single [post]
func (h *SolanaHandler) MigrateSingle(w http.ResponseWriter, r *http.Request) {
	var req model.MigrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	password, err := h.sessions.Password()
	if err != nil {
		writeError(w, err)
		return
	}
	defer clear(password)

	result, err := h.svc.MigrateSingle(r.Context(), req, password, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MigrateMulti handles POST /migrate/multi
// @Summary      Migrate many wallets
// @Description  Consolidates stored wallets into one destination, one transaction per wallet. Per-wallet failures are reported in the result.
// @Tags         migrate
// @Accept       json
// @Produce      json
// @Param        request  body      model.MultiWalletMigrationRequest  true  "Wallet selections"
// @Success      200      {object}  migration.MultiWalletMigrationResult
// @Failure      400      {object}  model.ErrorResponse
// @Router       /migrate/multi [post]
func (h *SolanaHandler) MigrateMulti(w http.ResponseWriter, r *http.Request) {
	var req model.MultiWalletMigrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	password, err := h.sessions.Password()
	if err != nil {
		writeError(w, err)
		return
	}
	defer clear(password)

	progress := func(current, total int, status string) {
		h.log.Info().Int("current", current).Int("total", total).Msg(status)
	}
	result, err := h.svc.MigrateMulti(r.Context(), req, password, progress)
	if err != nil {
		writeError(w, err)
		return
	}
	if result == nil {
		writeError(w, errors.New("migration returned no result"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}
