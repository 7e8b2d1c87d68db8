package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/psds-microservice/tracker-service/internal/model"
	"github.com/psds-microservice/tracker-service/internal/sdk"
)

// CompanyGroup: тикеты одной компании в порядке поступления.
type CompanyGroup struct {
	CompanyID int64          `json:"company_id"`
	Tickets   []model.Ticket `json:"tickets"`
}

// AssociationSummary: то, что показывает экран связей тикета трекера.
type AssociationSummary struct {
	Tickets          []model.Ticket `json:"tickets"`
	TicketsByCompany []CompanyGroup `json:"tickets_by_company"`
	FirstReport      *model.Ticket  `json:"first_report"`
}

// FilterUniqueTickets оставляет первый тикет каждого id, порядок сохраняется.
func FilterUniqueTickets(tickets []model.Ticket) []model.Ticket {
	if len(tickets) == 0 {
		return []model.Ticket{}
	}
	seen := make(map[int64]bool, len(tickets))
	out := make([]model.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

// FindEarliestTicket: тикет с наименьшим created_at, при равенстве
// первый. Тикет с нечитаемой датой не вытесняет уже найденный.
func FindEarliestTicket(tickets []model.Ticket) *model.Ticket {
	var earliest *model.Ticket
	for i := range tickets {
		t := &tickets[i]
		if earliest == nil {
			earliest = t
			continue
		}
		ts, ok := t.CreatedTime()
		es, eok := earliest.CreatedTime()
		if ok && eok && ts.Before(es) {
			earliest = t
		}
	}
	if earliest == nil {
		return nil
	}
	found := *earliest
	return &found
}

// GroupTicketsByCompany группирует тикеты по company id по возрастанию;
// тикеты без компании не попадают.
func GroupTicketsByCompany(tickets []model.Ticket) []CompanyGroup {
	idx := make(map[int64]int)
	var groups []CompanyGroup
	for _, t := range tickets {
		if t.CompanyID == 0 {
			continue
		}
		i, ok := idx[t.CompanyID]
		if !ok {
			i = len(groups)
			idx[t.CompanyID] = i
			groups = append(groups, CompanyGroup{CompanyID: t.CompanyID})
		}
		groups[i].Tickets = append(groups[i].Tickets, t)
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].CompanyID < groups[b].CompanyID })
	return groups
}

// ProcessAssociatedTickets собирает сводку по уже загруженному списку.
func ProcessAssociatedTickets(tickets []model.Ticket) AssociationSummary {
	if len(tickets) == 0 {
		log.Printf("service: associations: no tickets to process")
		return AssociationSummary{Tickets: []model.Ticket{}, TicketsByCompany: []CompanyGroup{}}
	}
	groups := GroupTicketsByCompany(tickets)
	if groups == nil {
		groups = []CompanyGroup{}
	}
	return AssociationSummary{
		Tickets:          tickets,
		TicketsByCompany: groups,
		FirstReport:      FindEarliestTicket(tickets),
	}
}

type associationsReply struct {
	Data []model.Association `json:"data"`
}

// GetAssociatedTickets загружает тикеты, связанные с ticketID. Тикеты,
// которые не загрузились, пропускаются; ошибка запроса связей возвращается.
func (a *TrackerApp) GetAssociatedTickets(ctx context.Context, ticketID int64) ([]model.Ticket, error) {
	resp, err := a.sdk.Request.InvokeTemplate(ctx, sdk.TemplateTicketAssociations, sdk.Options{
		Context: map[string]interface{}{"ticketId": ticketID},
	})
	if err != nil {
		return nil, fmt.Errorf("associations of %d: %w", ticketID, err)
	}
	var reply associationsReply
	if err := resp.Decode(&reply); err != nil {
		return nil, fmt.Errorf("associations of %d: decode: %w", ticketID, err)
	}
	if len(reply.Data) == 0 {
		log.Printf("service: associations: none found for %d", ticketID)
		return []model.Ticket{}, nil
	}

	ids := make([]int64, len(reply.Data))
	for i, as := range reply.Data {
		if as.TicketID == ticketID {
			ids[i] = as.AssociatedTicketID
		} else {
			ids[i] = as.TicketID
		}
	}

	results := make([]*model.Ticket, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			t, err := a.fetchTicket(ctx, sdk.TemplateGetTicketByID, id)
			if err != nil {
				log.Printf("service: associations: %v", err)
				return
			}
			results[i] = t
		}(i, id)
	}
	wg.Wait()

	out := make([]model.Ticket, 0, len(results))
	for _, t := range results {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}

// GetPrimeAssociation: самый ранний связанный тикет, nil если связей нет.
func (a *TrackerApp) GetPrimeAssociation(ctx context.Context, ticketID int64) (*model.Ticket, error) {
	tickets, err := a.GetAssociatedTickets(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	prime := FindEarliestTicket(tickets)
	if prime != nil {
		log.Printf("service: prime ticket for %d is #%d created at %s", ticketID, prime.ID, prime.CreatedAt)
	}
	return prime, nil
}

// Associations: GetAssociatedTickets, затем дедупликация и группировка.
func (a *TrackerApp) Associations(ctx context.Context, ticketID int64) (AssociationSummary, error) {
	tickets, err := a.GetAssociatedTickets(ctx, ticketID)
	if err != nil {
		return AssociationSummary{}, err
	}
	return ProcessAssociatedTickets(FilterUniqueTickets(tickets)), nil
}
