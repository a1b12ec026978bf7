package server

import (
	"github.com/gin-gonic/gin"
	accountdomain "github.com/voltmesh/gridadmin/internal/account/domain"
)

func (s *Server) createAccount(c *gin.Context) {
	var req accountdomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.accountSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

func (s *Server) listAccounts(c *gin.Context) {
	resp, err := s.accountSvc.List(c.Request.Context(), accountdomain.ListRequest{
		AccountNumber:  c.Query("accountNumber"),
		ConsumerNumber: c.Query("consumerNumber"),
		Blocked:        boolQuery(c, "blocked"),
		Page:           pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, resp.Accounts, resp.Pagination)
}

func (s *Server) getAccount(c *gin.Context) {
	resp, err := s.accountSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) rechargeAccount(c *gin.Context) {
	var req accountdomain.RechargeRequest
	if !bindJSON(c, &req) {
		return
	}
	req.AccountID = c.Param("id")

	resp, err := s.accountSvc.Recharge(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

func (s *Server) recordConsumption(c *gin.Context) {
	var req accountdomain.ConsumptionRequest
	if !bindJSON(c, &req) {
		return
	}
	req.AccountID = c.Param("id")

	resp, err := s.accountSvc.RecordConsumption(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

type blockRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) blockAccount(c *gin.Context) {
	var req blockRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.accountSvc.Block(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) unblockAccount(c *gin.Context) {
	resp, err := s.accountSvc.Unblock(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) listAccountRecharges(c *gin.Context) {
	resp, err := s.accountSvc.ListRecharges(c.Request.Context(), c.Param("id"), pageFromQuery(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, resp.Recharges, resp.Pagination)
}

func (s *Server) listAccountTransactions(c *gin.Context) {
	resp, err := s.accountSvc.ListTransactions(c.Request.Context(), c.Param("id"), pageFromQuery(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, resp.Transactions, resp.Pagination)
}
