package ledgerhttp

import (
	"time"

	"github.com/praxis-pm/praxis/internal/ledger"
	"github.com/praxis-pm/praxis/internal/shared"
)

type rangeVM struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type itemVM struct {
	ID          string  `json:"id"`
	Virtual     bool    `json:"virtual"`
	Status      string  `json:"status"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	PatientID   string  `json:"patient_id"`
	PatientName string  `json:"patient_name"`
	SessionID   string  `json:"session_id,omitempty"`
	Description string  `json:"description,omitempty"`
}

type paginationVM struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type batchVM struct {
	VisibleCount int  `json:"visible_count"`
	HasMore      bool `json:"has_more"`
	NextVisible  int  `json:"next_visible"`
	Total        int  `json:"total"`
}

type listResponse struct {
	Range      rangeVM       `json:"range"`
	Items      []itemVM      `json:"items"`
	Pagination *paginationVM `json:"pagination,omitempty"`
	Batch      *batchVM      `json:"batch,omitempty"`
}

func toListResponse(result *ledger.Result) listResponse {
	resp := listResponse{
		Range: toRangeVM(result.Range),
		Items: toItemVMs(result.Items),
	}
	if result.Pagination != nil {
		resp.Pagination = toPaginationVM(*result.Pagination)
	}
	if result.Batch != nil {
		resp.Batch = toBatchVM(*result.Batch)
	}
	return resp
}

func toRangeVM(rng ledger.Range) rangeVM {
	return rangeVM{Start: rng.Start.Format(time.RFC3339), End: rng.End.Format(time.RFC3339)}
}

func toItemVMs(items []ledger.Item) []itemVM {
	out := make([]itemVM, 0, len(items))
	for _, item := range items {
		out = append(out, itemVM{
			ID:          item.ID,
			Virtual:     item.IsVirtual,
			Status:      string(item.Status),
			Amount:      item.Amount,
			Date:        item.Date.Format(time.RFC3339),
			PatientID:   item.PatientID.String(),
			PatientName: item.PatientName,
			SessionID:   item.SessionID,
			Description: item.Description,
		})
	}
	return out
}

func toPaginationVM(p shared.Pagination) *paginationVM {
	return &paginationVM{Page: p.Page, PerPage: p.PerPage, Total: p.Total, TotalPages: p.TotalPages}
}

func toBatchVM(b shared.BatchMeta) *batchVM {
	return &batchVM{VisibleCount: b.VisibleCount, HasMore: b.HasMore, NextVisible: b.NextVisible, Total: b.Total}
}
