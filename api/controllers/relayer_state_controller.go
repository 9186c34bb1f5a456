package controllers

import (
	"errors"
	"fmt"
	"net/http"

	apiCore "github.com/Ethernal-Tech/bridge-relayer/api/core"
	"github.com/Ethernal-Tech/bridge-relayer/api/model/response"
	apiUtils "github.com/Ethernal-Tech/bridge-relayer/api/utils"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/hashicorp/go-hclog"
)

type RelayerStateControllerImpl struct {
	relayerManager core.RelayerManager
	logger         hclog.Logger
}

var _ apiCore.APIController = (*RelayerStateControllerImpl)(nil)

func NewRelayerStateController(
	relayerManager core.RelayerManager, logger hclog.Logger,
) *RelayerStateControllerImpl {
	return &RelayerStateControllerImpl{
		relayerManager: relayerManager,
		logger:         logger,
	}
}

func (*RelayerStateControllerImpl) GetPathPrefix() string {
	return "RelayerState"
}

func (c *RelayerStateControllerImpl) GetEndpoints() []*apiCore.APIEndpoint {
	return []*apiCore.APIEndpoint{
		{Path: "GetPairs", Method: http.MethodGet, Handler: c.getPairs, APIKeyAuth: true},
		{Path: "GetPending", Method: http.MethodGet, Handler: c.getPending, APIKeyAuth: true},
		{Path: "GetDeadLetters", Method: http.MethodGet, Handler: c.getDeadLetters, APIKeyAuth: true},
		{Path: "GetDroppedEvents", Method: http.MethodGet, Handler: c.getDroppedEvents, APIKeyAuth: true},
		{Path: "Flush", Method: http.MethodPost, Handler: c.flush, APIKeyAuth: true},
		{Path: "RequeueDeadLetter", Method: http.MethodPost, Handler: c.requeueDeadLetter, APIKeyAuth: true},
	}
}

func (c *RelayerStateControllerImpl) getPairs(w http.ResponseWriter, r *http.Request) {
	apiUtils.WriteResponse(w, r, http.StatusOK, response.NewPairsResponse(c.relayerManager.GetPairs()), c.logger)
}

func (c *RelayerStateControllerImpl) getPending(w http.ResponseWriter, r *http.Request) {
	_, relayer, ok := c.getRelayer(w, r)
	if !ok {
		return
	}

	apiUtils.WriteResponse(w, r, http.StatusOK, response.NewRelayerStateResponse(relayer.Snapshot()), c.logger)
}

func (c *RelayerStateControllerImpl) getDeadLetters(w http.ResponseWriter, r *http.Request) {
	pair, relayer, ok := c.getRelayer(w, r)
	if !ok {
		return
	}

	deadLetters, err := relayer.GetDeadLetters()
	if err != nil {
		apiUtils.WriteErrorResponse(w, r, http.StatusInternalServerError,
			fmt.Errorf("failed to get dead letters: %w", err), c.logger)

		return
	}

	apiUtils.WriteResponse(w, r, http.StatusOK, response.NewDeadLettersResponse(pair, deadLetters), c.logger)
}

func (c *RelayerStateControllerImpl) getDroppedEvents(w http.ResponseWriter, r *http.Request) {
	pair, relayer, ok := c.getRelayer(w, r)
	if !ok {
		return
	}

	droppedEvents, err := relayer.GetDroppedEvents()
	if err != nil {
		apiUtils.WriteErrorResponse(w, r, http.StatusInternalServerError,
			fmt.Errorf("failed to get dropped events: %w", err), c.logger)

		return
	}

	apiUtils.WriteResponse(w, r, http.StatusOK, response.NewDroppedEventsResponse(pair, droppedEvents), c.logger)
}

// flush triggers an out of schedule flush. Failed events stay queued as with a periodic flush.
func (c *RelayerStateControllerImpl) flush(w http.ResponseWriter, r *http.Request) {
	pair, relayer, ok := c.getRelayer(w, r)
	if !ok {
		return
	}

	if err := relayer.Flush(r.Context()); err != nil {
		apiUtils.WriteErrorResponse(w, r, http.StatusInternalServerError,
			fmt.Errorf("flush failed for %s: %w", pair, err), c.logger)

		return
	}

	c.logger.Info("Flush triggered through api", "pair", pair)

	apiUtils.WriteResponse(w, r, http.StatusOK, response.NewRelayerStateResponse(relayer.Snapshot()), c.logger)
}

func (c *RelayerStateControllerImpl) requeueDeadLetter(w http.ResponseWriter, r *http.Request) {
	pair, relayer, ok := c.getRelayer(w, r)
	if !ok {
		return
	}

	id, ok := apiUtils.GetQueryParam(w, r, "id", c.logger)
	if !ok {
		return
	}

	count, err := relayer.RequeueDeadLetter(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrDeadLetterNotFound) {
			status = http.StatusNotFound
		}

		apiUtils.WriteErrorResponse(w, r, status, fmt.Errorf("failed to requeue dead letter for %s: %w", pair, err), c.logger)

		return
	}

	c.logger.Info("Dead letter requeued through api", "pair", pair, "id", id, "count", count)

	apiUtils.WriteResponse(w, r, http.StatusOK, response.NewRelayerStateResponse(relayer.Snapshot()), c.logger)
}

func (c *RelayerStateControllerImpl) getRelayer(
	w http.ResponseWriter, r *http.Request,
) (string, core.Relayer, bool) {
	pair, ok := apiUtils.GetQueryParam(w, r, "pair", c.logger)
	if !ok {
		return "", nil, false
	}

	relayer, exists := c.relayerManager.GetRelayer(pair)
	if !exists {
		apiUtils.WriteErrorResponse(w, r, http.StatusNotFound, fmt.Errorf("unknown pair: %s", pair), c.logger)

		return "", nil, false
	}

	return pair, relayer, true
}
