package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/api/middleware"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/api/rest/dto"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/bridge"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/ledger"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// GetToken retrieves a token's metadata document
	// GET /api/v1/tokens/:id
	GetToken(c *gin.Context)

	// GetOwnerTokens enumerates the token ids an owner holds
	// GET /api/v1/owners/:address/tokens
	GetOwnerTokens(c *gin.Context)

	// GetPartners enumerates the authorized partner shops
	// GET /api/v1/partners
	GetPartners(c *gin.Context)

	// GetLedgerInfo reports the ledger counter and bridge configuration
	// GET /api/v1/ledger
	GetLedgerInfo(c *gin.Context)

	// MintToken mints a new token (partner JWT required)
	// POST /api/v1/tokens
	MintToken(c *gin.Context)

	// ApproveTransfer grants a single-use transfer approval (owner JWT required)
	// POST /api/v1/tokens/:id/approve
	ApproveTransfer(c *gin.Context)

	// TransferToken performs a partner-mediated transfer (partner JWT required)
	// POST /api/v1/tokens/:id/transfer
	TransferToken(c *gin.Context)

	// BridgeToken bridges a token to another network (owner JWT required)
	// POST /api/v1/tokens/:id/bridge
	BridgeToken(c *gin.Context)

	// SetDestinationAllowed updates the destination allowlist (admin)
	// POST /api/v1/admin/allowlist/destinations
	SetDestinationAllowed(c *gin.Context)

	// SetSourceAllowed updates the source allowlist (admin)
	// POST /api/v1/admin/allowlist/sources
	SetSourceAllowed(c *gin.Context)

	// SetSenderAllowed updates the sender allowlist (admin)
	// POST /api/v1/admin/allowlist/senders
	SetSenderAllowed(c *gin.Context)

	// GetAllowlist reports the configured allowlist entries (admin)
	// GET /api/v1/admin/allowlist
	GetAllowlist(c *gin.Context)

	// SetGasLimit adjusts the destination gas budget (admin)
	// POST /api/v1/admin/gas-limit
	SetGasLimit(c *gin.Context)

	// AddPartner authorizes a partner shop (admin)
	// POST /api/v1/admin/partners
	AddPartner(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	ledger     *ledger.Ledger
	controller *bridge.Controller
	// admin is the caller identity used for API-key-authenticated admin calls
	admin domain.Address
}

// NewHandler creates a new REST API handler
func NewHandler(l *ledger.Ledger, c *bridge.Controller, admin domain.Address) Handler {
	return &handler{ledger: l, controller: c, admin: admin}
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "network": h.ledger.Network().String()})
}

// GetToken retrieves a token's metadata document
func (h *handler) GetToken(c *gin.Context) {
	id, ok := parseTokenID(c)
	if !ok {
		return
	}

	doc, err := h.ledger.TokenMetadata(id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTokenResponse(doc))
}

// GetOwnerTokens enumerates the token ids an owner holds
func (h *handler) GetOwnerTokens(c *gin.Context) {
	owner := domain.Address(c.Param("address"))
	if !owner.Valid() {
		respondBadRequest(c, "Invalid owner address")
		return
	}

	ids := h.ledger.TokensOf(owner)
	tokenIDs := make([]uint64, 0, len(ids))
	for _, id := range ids {
		tokenIDs = append(tokenIDs, uint64(id))
	}

	c.JSON(http.StatusOK, dto.OwnerTokensResponse{
		Owner:    owner.Normalized().String(),
		TokenIDs: tokenIDs,
	})
}

// GetPartners enumerates the authorized partner shops
func (h *handler) GetPartners(c *gin.Context) {
	partners := h.ledger.Partners()
	addresses := make([]string, 0, len(partners))
	for _, p := range partners {
		addresses = append(addresses, p.String())
	}
	c.JSON(http.StatusOK, dto.PartnersResponse{Partners: addresses})
}

// GetLedgerInfo reports the ledger counter and bridge configuration
func (h *handler) GetLedgerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.LedgerResponse{
		Network:     h.ledger.Network().String(),
		NextTokenID: uint64(h.ledger.NextTokenID()),
		Controller:  h.controller.Address().String(),
		GasLimit:    h.controller.GasLimit(),
	})
}

// MintToken mints a new token
func (h *handler) MintToken(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	id, err := h.ledger.Mint(c.Request.Context(), caller, domain.Address(req.Owner), domain.CatProfile{
		Name:  req.Name,
		Breed: req.Breed,
		Image: req.Image,
		DOB:   req.DOB,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MintResponse{TokenID: uint64(id)})
}

// ApproveTransfer grants a single-use transfer approval
func (h *handler) ApproveTransfer(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := parseTokenID(c)
	if !ok {
		return
	}

	var req dto.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.ledger.Approve(c.Request.Context(), caller, domain.Address(req.To), id); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// TransferToken performs a partner-mediated transfer
func (h *handler) TransferToken(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := parseTokenID(c)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	err := h.ledger.Transfer(c.Request.Context(), caller, domain.Address(req.From), domain.Address(req.To), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BridgeToken bridges a token to another network
func (h *handler) BridgeToken(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := parseTokenID(c)
	if !ok {
		return
	}

	var req dto.BridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	messageID, err := h.ledger.InitiateBridge(c.Request.Context(), caller, id,
		domain.Network(req.DestNetwork), domain.Address(req.DestAddress))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.BridgeResponse{MessageID: messageID})
}

// SetDestinationAllowed updates the destination allowlist
func (h *handler) SetDestinationAllowed(c *gin.Context) {
	var req dto.AllowlistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.controller.SetDestinationAllowed(h.admin, domain.Network(req.Network), req.Allowed); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetSourceAllowed updates the source allowlist
func (h *handler) SetSourceAllowed(c *gin.Context) {
	var req dto.AllowlistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.controller.SetSourceAllowed(h.admin, domain.Network(req.Network), req.Allowed); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetSenderAllowed updates the sender allowlist
func (h *handler) SetSenderAllowed(c *gin.Context) {
	var req dto.AllowlistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.controller.SetSenderAllowed(h.admin, domain.Address(req.Address), req.Allowed); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAllowlist reports the configured allowlist entries
func (h *handler) GetAllowlist(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewAllowlistResponse(h.controller.Allowlist()))
}

// SetGasLimit adjusts the destination gas budget
func (h *handler) SetGasLimit(c *gin.Context) {
	var req dto.GasLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.controller.SetGasLimit(h.admin, req.GasLimit); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddPartner authorizes a partner shop
func (h *handler) AddPartner(c *gin.Context) {
	var req dto.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.ledger.AddPartner(c.Request.Context(), h.admin, domain.Address(req.Address)); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseTokenID extracts and validates the :id path parameter
func parseTokenID(c *gin.Context) (domain.TokenID, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid token id", raw)
		return 0, false
	}
	return domain.TokenID(id), true
}

// requireCaller extracts the authenticated caller address
func requireCaller(c *gin.Context) (domain.Address, bool) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return "", false
	}
	return caller, true
}
