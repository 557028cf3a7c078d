// Package httpapi exposes the token engine to relayers over a JSON HTTP
// surface: authorization submission, cancellation, and read-only probes of
// ledger state, balances, events, and the signing domain.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gaslesspay/fiattoken"
	"github.com/gaslesspay/fiattoken/eip712"
	"github.com/gaslesspay/fiattoken/token"
)

// CallerHeader carries the submitting caller's address on receive
// submissions. The facade trusts its authenticating front for this identity;
// the engine enforces that it equals the payee.
const CallerHeader = "X-Caller-Address"

// Server wires the token engine into a gin router.
type Server struct {
	token  *token.FiatToken
	engine *gin.Engine
}

// NewServer creates a relayer-facing HTTP server around t.
func NewServer(t *token.FiatToken) *Server {
	s := &Server{
		token:  t,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery())

	v1 := s.engine.Group("/v1")
	v1.POST("/authorizations/transfer", s.handleTransfer)
	v1.POST("/authorizations/receive", s.handleReceive)
	v1.POST("/authorizations/cancel", s.handleCancel)
	v1.GET("/authorizations/:authorizer/:nonce", s.handleAuthorizationState)
	v1.GET("/balances/:address", s.handleBalance)
	v1.GET("/events", s.handleEvents)
	v1.GET("/domain", s.handleDomain)

	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

type authorizationRequest struct {
	Authorization fiattoken.Authorization `json:"authorization"`
	Signature     string                  `json:"signature"`
}

type cancellationRequest struct {
	Cancellation fiattoken.Cancellation `json:"cancellation"`
	Signature    string                 `json:"signature"`
}

func (s *Server) handleTransfer(c *gin.Context) {
	requestID := uuid.NewString()

	req, ok := s.decodeAuthorization(c, requestID)
	if !ok {
		return
	}

	parsed, v, r, sig, ok := s.parseAuthorization(c, requestID, req)
	if !ok {
		return
	}

	err := s.token.TransferWithAuthorization(
		parsed.From, parsed.To,
		parsed.Value, parsed.ValidAfter, parsed.ValidBefore,
		parsed.Nonce, v, r, sig,
	)
	if err != nil {
		writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId": requestID,
		"success":   true,
		"from":      parsed.From.Hex(),
		"to":        parsed.To.Hex(),
		"value":     parsed.Value.String(),
		"nonce":     hexutil.Encode(parsed.Nonce[:]),
	})
}

func (s *Server) handleReceive(c *gin.Context) {
	requestID := uuid.NewString()

	callerHex := c.GetHeader(CallerHeader)
	if !common.IsHexAddress(callerHex) {
		writeError(c, requestID, fiattoken.NewAuthorizationError(
			fiattoken.ErrCodeInvalidPayload,
			"missing or invalid "+CallerHeader+" header",
			nil,
		))
		return
	}
	caller := common.HexToAddress(callerHex)

	req, ok := s.decodeAuthorization(c, requestID)
	if !ok {
		return
	}

	parsed, v, r, sig, ok := s.parseAuthorization(c, requestID, req)
	if !ok {
		return
	}

	err := s.token.ReceiveWithAuthorization(
		caller,
		parsed.From, parsed.To,
		parsed.Value, parsed.ValidAfter, parsed.ValidBefore,
		parsed.Nonce, v, r, sig,
	)
	if err != nil {
		writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId": requestID,
		"success":   true,
		"from":      parsed.From.Hex(),
		"to":        parsed.To.Hex(),
		"value":     parsed.Value.String(),
		"nonce":     hexutil.Encode(parsed.Nonce[:]),
	})
}

func (s *Server) handleCancel(c *gin.Context) {
	requestID := uuid.NewString()

	body, err := c.GetRawData()
	if err != nil {
		writeError(c, requestID, fiattoken.NewAuthorizationError(fiattoken.ErrCodeInvalidPayload, "failed to read request body", nil))
		return
	}
	if err := validateSchema(cancellationSchema, body); err != nil {
		writeError(c, requestID, fiattoken.NewAuthorizationError(fiattoken.ErrCodeInvalidPayload, err.Error(), nil))
		return
	}

	var req cancellationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(c, requestID, fiattoken.NewAuthorizationError(fiattoken.ErrCodeInvalidPayload, err.Error(), nil))
		return
	}

	authorizer, nonce, err := req.Cancellation.Parse()
	if err != nil {
		writeError(c, requestID, err)
		return
	}
	v, r, sig, err := fiattoken.ParseSignature(req.Signature)
	if err != nil {
		writeError(c, requestID, err)
		return
	}

	if err := s.token.CancelAuthorization(authorizer, nonce, v, r, sig); err != nil {
		writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId":  requestID,
		"success":    true,
		"authorizer": authorizer.Hex(),
		"nonce":      hexutil.Encode(nonce[:]),
	})
}

func (s *Server) handleAuthorizationState(c *gin.Context) {
	requestID := uuid.NewString()

	authorizerHex := c.Param("authorizer")
	if !common.IsHexAddress(authorizerHex) {
		writeError(c, requestID, fiattoken.NewAuthorizationError(fiattoken.ErrCodeInvalidPayload, "invalid authorizer address", nil))
		return
	}
	nonce, err := fiattoken.ParseNonce(c.Param("nonce"))
	if err != nil {
		writeError(c, requestID, err)
		return
	}

	authorizer := common.HexToAddress(authorizerHex)
	c.JSON(http.StatusOK, gin.H{
		"requestId":  requestID,
		"authorizer": authorizer.Hex(),
		"nonce":      hexutil.Encode(nonce[:]),
		"used":       s.token.AuthorizationState(authorizer, nonce),
	})
}

func (s *Server) handleBalance(c *gin.Context) {
	requestID := uuid.NewString()

	addressHex := c.Param("address")
	if !common.IsHexAddress(addressHex) {
		writeError(c, requestID, fiattoken.NewAuthorizationError(fiattoken.ErrCodeInvalidPayload, "invalid address", nil))
		return
	}

	address := common.HexToAddress(addressHex)
	c.JSON(http.StatusOK, gin.H{
		"requestId": requestID,
		"address":   address.Hex(),
		"balance":   s.token.BalanceOf(address).String(),
	})
}

func (s *Server) handleEvents(c *gin.Context) {
	requestID := uuid.NewString()

	events := s.token.Events()
	rendered := make([]gin.H, 0, len(events))
	for _, event := range events {
		rendered = append(rendered, renderEvent(event))
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId": requestID,
		"events":    rendered,
	})
}

func (s *Server) handleDomain(c *gin.Context) {
	requestID := uuid.NewString()

	domain := s.token.Domain()
	c.JSON(http.StatusOK, gin.H{
		"requestId":         requestID,
		"name":              domain.Name,
		"version":           domain.Version,
		"chainId":           domain.ChainID.String(),
		"verifyingContract": domain.VerifyingContract.Hex(),
		"domainSeparator":   s.token.DomainSeparator().Hex(),
		"typeHashes": gin.H{
			"transferWithAuthorization": eip712.TransferWithAuthorizationTypeHash.Hex(),
			"receiveWithAuthorization":  eip712.ReceiveWithAuthorizationTypeHash.Hex(),
			"cancelAuthorization":       eip712.CancelAuthorizationTypeHash.Hex(),
		},
	})
}

func (s *Server) decodeAuthorization(c *gin.Context, requestID string) (authorizationRequest, bool) {
	var req authorizationRequest

	body, err := c.GetRawData()
	if err != nil {
		writeError(c, requestID, fiattoken.NewAuthorizationError(fiattoken.ErrCodeInvalidPayload, "failed to read request body", nil))
		return req, false
	}
	if err := validateSchema(authorizationSchema, body); err != nil {
		writeError(c, requestID, fiattoken.NewAuthorizationError(fiattoken.ErrCodeInvalidPayload, err.Error(), nil))
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(c, requestID, fiattoken.NewAuthorizationError(fiattoken.ErrCodeInvalidPayload, err.Error(), nil))
		return req, false
	}
	return req, true
}

func (s *Server) parseAuthorization(c *gin.Context, requestID string, req authorizationRequest) (fiattoken.ParsedAuthorization, uint8, [32]byte, [32]byte, bool) {
	parsed, err := req.Authorization.Parse()
	if err != nil {
		writeError(c, requestID, err)
		return parsed, 0, [32]byte{}, [32]byte{}, false
	}
	v, r, sig, err := fiattoken.ParseSignature(req.Signature)
	if err != nil {
		writeError(c, requestID, err)
		return parsed, 0, [32]byte{}, [32]byte{}, false
	}
	return parsed, v, r, sig, true
}

func renderEvent(event token.Event) gin.H {
	switch e := event.(type) {
	case token.TransferEvent:
		return gin.H{
			"name":  e.EventName(),
			"from":  e.From.Hex(),
			"to":    e.To.Hex(),
			"value": e.Value.String(),
		}
	case token.AuthorizationUsedEvent:
		return gin.H{
			"name":       e.EventName(),
			"authorizer": e.Authorizer.Hex(),
			"nonce":      e.NonceHex(),
		}
	case token.AuthorizationCanceledEvent:
		return gin.H{
			"name":       e.EventName(),
			"authorizer": e.Authorizer.Hex(),
			"nonce":      e.NonceHex(),
		}
	default:
		return gin.H{"name": event.EventName()}
	}
}

// writeError maps protocol errors to HTTP statuses: replay conflicts to 409,
// underfunded transfers to 422, everything else to 400.
func writeError(c *gin.Context, requestID string, err error) {
	status := http.StatusBadRequest
	payload := gin.H{"requestId": requestID}

	var authErr *fiattoken.AuthorizationError
	if errors.As(err, &authErr) {
		switch authErr.Code {
		case fiattoken.ErrCodeAlreadyUsed:
			status = http.StatusConflict
		case fiattoken.ErrCodeInsufficientBalance:
			status = http.StatusUnprocessableEntity
		}
		payload["error"] = authErr
	} else {
		payload["error"] = gin.H{
			"code":    fiattoken.ErrCodeInvalidPayload,
			"message": err.Error(),
		}
	}

	c.JSON(status, payload)
}
