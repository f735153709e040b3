package handlers

import (
	"net/http"

	"campus-food-api/middleware"
	"campus-food-api/models"
	"campus-food-api/services"
	"campus-food-api/statemachine"

	"github.com/gin-gonic/gin"
)

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// PlaceOrder creates an order for the caller
func (h *Handler) PlaceOrder(c *gin.Context) {
	var in services.OrderInput
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	order, err := h.Orders.Place(c.Request.Context(), middleware.GetPrincipal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, order)
}

// GetMyOrders returns the caller's orders
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.Orders.Mine(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, orders)
}

// GetAllOrders supports ?status=&restaurant= (admin)
func (h *Handler) GetAllOrders(c *gin.Context) {
	orders, err := h.Orders.All(c.Request.Context(), c.Query("status"), c.Query("restaurant"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, orders)
}

// GetOrder returns one order to its customer, the restaurant owner or an admin
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.Orders.Get(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, order)
}

// UpdateOrderStatus moves an order through the lifecycle
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	order, err := h.Orders.UpdateStatus(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"order":            order,
		"validNextActions": statemachine.ValidTransitionsFrom(order.Status),
	})
}

// GetStateMachineInfo returns the order lifecycle
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"transitions":    statemachine.GetAllTransitions(),
		"terminalStates": statemachine.TerminalStates(),
	})
}
