package controller

import (
	"net/http"

	"github.com/ampplex/influencerflow/internal/handler"
	"github.com/ampplex/influencerflow/internal/service"
)

type ContractController struct {
	ContractService *service.ContractService
}

func (c *ContractController) Preview(w http.ResponseWriter, r *http.Request) {
	var body service.ContractInput
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	rendered, err := c.ContractService.Preview(r.Context(), session(r), body)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, map[string]any{
		"body":        rendered,
		"template":    body.Template,
		"outreach_id": body.OutreachID,
	})
}

func (c *ContractController) Generate(w http.ResponseWriter, r *http.Request) {
	var body service.ContractInput
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	contract, err := c.ContractService.Generate(r.Context(), brandID(r), body)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, contract)
}

func (c *ContractController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	contract, err := c.ContractService.Get(r.Context(), session(r), id)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, contract)
}

func (c *ContractController) Send(w http.ResponseWriter, r *http.Request) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	contract, err := c.ContractService.Send(r.Context(), brandID(r), id)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, contract)
}

func (c *ContractController) Sign(w http.ResponseWriter, r *http.Request) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	var body service.SignInput
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	contract, err := c.ContractService.Sign(r.Context(), session(r), id, body)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, contract)
}

func (c *ContractController) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	contract, err := c.ContractService.Reject(r.Context(), session(r), id)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, contract)
}
