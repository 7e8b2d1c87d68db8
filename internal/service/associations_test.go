package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psds-microservice/tracker-service/internal/model"
	"github.com/psds-microservice/tracker-service/internal/sdk"
	"github.com/psds-microservice/tracker-service/internal/sdk/sdktest"
)

func TestFilterUniqueTickets(t *testing.T) {
	in := []model.Ticket{{ID: 1, Subject: "a"}, {ID: 2}, {ID: 1, Subject: "dup"}, {ID: 3}}
	out := FilterUniqueTickets(in)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].Subject)
	assert.Equal(t, []model.Ticket{}, FilterUniqueTickets(nil))
}

func TestFindEarliestTicket(t *testing.T) {
	assert.Nil(t, FindEarliestTicket(nil))

	tickets := []model.Ticket{
		{ID: 1, CreatedAt: "2025-03-01T00:00:00Z"},
		{ID: 2, CreatedAt: "2025-01-01T00:00:00Z"},
		{ID: 3, CreatedAt: "garbage"},
		{ID: 4, CreatedAt: "2025-01-01T00:00:00Z"},
	}
	got := FindEarliestTicket(tickets)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID, "ties go to the first ticket")

	got.Subject = "changed"
	assert.Equal(t, "", tickets[1].Subject, "result is a copy")
}

func TestGroupTicketsByCompany(t *testing.T) {
	groups := GroupTicketsByCompany([]model.Ticket{
		{ID: 1, CompanyID: 20},
		{ID: 2, CompanyID: 10},
		{ID: 3},
		{ID: 4, CompanyID: 20},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, int64(10), groups[0].CompanyID)
	assert.Equal(t, int64(20), groups[1].CompanyID)
	assert.Equal(t, []int64{1, 4}, []int64{groups[1].Tickets[0].ID, groups[1].Tickets[1].ID})
}

func TestProcessAssociatedTicketsEmpty(t *testing.T) {
	sum := ProcessAssociatedTickets(nil)
	assert.Empty(t, sum.Tickets)
	assert.NotNil(t, sum.TicketsByCompany)
	assert.Nil(t, sum.FirstReport)
}

func associationsFake() *sdktest.Fake {
	tickets := map[int64]model.Ticket{
		101: {ID: 101, CompanyID: 7, CreatedAt: "2025-02-01T00:00:00Z"},
		102: {ID: 102, CompanyID: 8, CreatedAt: "2025-01-15T00:00:00Z"},
	}
	return sdktest.New().
		RespondJSON(sdk.TemplateTicketAssociations, map[string]interface{}{
			"data": []map[string]interface{}{
				{"ticket_id": 100, "associated_ticket_id": 101},
				{"ticket_id": 102, "associated_ticket_id": 100},
				{"ticket_id": 100, "associated_ticket_id": 101},
				{"ticket_id": 100, "associated_ticket_id": 404},
			},
		}).
		Handle(sdk.TemplateGetTicketByID, func(opts sdk.Options) (*sdk.Response, error) {
			id, _ := opts.Context["ticketId"].(int64)
			t, ok := tickets[id]
			if !ok {
				return nil, &sdk.APIError{Status: 404}
			}
			return &sdk.Response{Status: 200, Response: mustJSON(t)}, nil
		})
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func TestGetAssociatedTickets(t *testing.T) {
	fake := associationsFake()
	app := newTestApp(t, fake, Deps{})

	tickets, err := app.GetAssociatedTickets(context.Background(), 100)
	require.NoError(t, err)
	var ids []int64
	for _, tk := range tickets {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []int64{101, 102, 101}, ids, "failed lookups are skipped, order is kept")
	assert.Len(t, fake.Calls(sdk.TemplateGetTicketByID), 4)

	prime, err := app.GetPrimeAssociation(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, prime)
	assert.Equal(t, int64(102), prime.ID)

	sum, err := app.Associations(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, sum.Tickets, 2)
	assert.Len(t, sum.TicketsByCompany, 2)
	assert.Equal(t, int64(102), sum.FirstReport.ID)
}

func TestGetAssociatedTicketsLookupFails(t *testing.T) {
	fake := sdktest.New().Reject(sdk.TemplateTicketAssociations, 500, "")
	app := newTestApp(t, fake, Deps{})
	_, err := app.GetAssociatedTickets(context.Background(), 1)
	assert.Error(t, err)

	fake = sdktest.New().RespondJSON(sdk.TemplateTicketAssociations, map[string]interface{}{"data": []interface{}{}})
	app = newTestApp(t, fake, Deps{})
	tickets, err := app.GetAssociatedTickets(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}
