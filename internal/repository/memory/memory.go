// Package memory holds in-memory repository implementations backing the
// service tests. They mirror the postgres semantics closely enough for unit
// testing: the not-found sentinel, last-write-wins updates and the
// transactional pairing of mutations with outbox inserts.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
)

type AccountRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*model.Account
	Events   []*model.OutboxEvent
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[uuid.UUID]*model.Account)}
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.ID = uuid.New()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *AccountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.Email == email {
			cp := *account
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *AccountRepository) Update(ctx context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; !ok {
		return repository.ErrNotFound
	}
	account.UpdatedAt = time.Now()
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *AccountRepository) List(ctx context.Context, filters *model.AccountFilters) ([]*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Account
	for _, account := range r.accounts {
		if filters != nil {
			if filters.Role != "" && account.Role != filters.Role {
				continue
			}
			if filters.IsVerified != nil && account.IsVerified != *filters.IsVerified {
				continue
			}
			if filters.City != "" && (account.City == nil || !strings.EqualFold(*account.City, filters.City)) {
				continue
			}
			if filters.SearchTerm != "" && !matchesSearch(account, filters.SearchTerm) {
				continue
			}
		}
		cp := *account
		out = append(out, &cp)
	}
	return out, nil
}

func matchesSearch(account *model.Account, term string) bool {
	term = strings.ToLower(term)
	fields := []string{account.Name}
	for _, f := range []*string{account.Specialization, account.ClinicName, account.City} {
		if f != nil {
			fields = append(fields, *f)
		}
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func (r *AccountRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.LastLoginAt = &at
	return nil
}

func (r *AccountRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if blocked && !account.IsBlocked {
		account.TokenVersion++
	}
	account.IsBlocked = blocked
	return nil
}

func (r *AccountRepository) SetBlockedWithEvent(ctx context.Context, id uuid.UUID, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !account.IsBlocked {
		account.TokenVersion++
	}
	account.IsBlocked = true
	r.recordEvent(event)
	return nil
}

func (r *AccountRepository) BumpTokenVersion(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.TokenVersion++
	return nil
}

func (r *AccountRepository) SetVerifiedWithEvent(ctx context.Context, id uuid.UUID, verified bool, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.IsVerified = verified
	r.recordEvent(event)
	return nil
}

func (r *AccountRepository) DeleteWithEvent(ctx context.Context, id uuid.UUID, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.accounts, id)
	r.recordEvent(event)
	return nil
}

func (r *AccountRepository) recordEvent(event *model.OutboxEvent) {
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.Events = append(r.Events, event)
}

type AppointmentRepository struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment

	// Accounts, when set, backs ListPatientsForDoctor.
	Accounts *AccountRepository
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *AppointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt
	cp := *apt
	r.appointments[apt.ID] = &cp
	return nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *apt
	return &cp, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	apt.UpdatedAt = time.Now()
	cp := *apt
	r.appointments[apt.ID] = &cp
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Appointment
	for _, apt := range r.appointments {
		if filters != nil {
			if filters.PatientID != uuid.Nil && apt.PatientID != filters.PatientID {
				continue
			}
			if filters.DoctorID != uuid.Nil && apt.DoctorID != filters.DoctorID {
				continue
			}
			if filters.Status != "" && apt.Status != filters.Status {
				continue
			}
		}
		cp := *apt
		out = append(out, &cp)
	}
	return out, nil
}

func (r *AppointmentRepository) ListPatientsForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Account, error) {
	r.mu.Lock()
	seen := make(map[uuid.UUID]bool)
	for _, apt := range r.appointments {
		if apt.DoctorID == doctorID {
			seen[apt.PatientID] = true
		}
	}
	r.mu.Unlock()

	var out []*model.Account
	if r.Accounts == nil {
		return out, nil
	}
	for id := range seen {
		if account, err := r.Accounts.Get(ctx, id); err == nil {
			out = append(out, account)
		}
	}
	return out, nil
}

func (r *AppointmentRepository) StatsForDoctor(ctx context.Context, doctorID uuid.UUID, now time.Time) (*model.DoctorStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &model.DoctorStats{}
	patients := make(map[uuid.UUID]bool)
	for _, apt := range r.appointments {
		if apt.DoctorID != doctorID {
			continue
		}
		stats.TotalAppointments++
		patients[apt.PatientID] = true
		if apt.Status == model.AppointmentStatusPending {
			stats.PendingAppointments++
		}
		if apt.Status == model.AppointmentStatusCompleted {
			stats.CompletedAppointments++
		}
		if sameDay(apt.ScheduledDate, now) {
			stats.TodayAppointments++
		}
		if apt.ScheduledDate.After(now.AddDate(0, 0, -7)) && !apt.ScheduledDate.After(now.AddDate(0, 0, 7)) {
			stats.WeekAppointments++
		}
	}
	stats.TotalPatients = len(patients)
	return stats, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type ChatRepository struct {
	mu       sync.Mutex
	messages []*model.ChatMessage
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{}
}

func (r *ChatRepository) Create(ctx context.Context, msg *model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt
	cp := *msg
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *ChatRepository) Conversation(ctx context.Context, a, b uuid.UUID) ([]*model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.ChatMessage
	for _, msg := range r.messages {
		if (msg.SenderID == a && msg.ReceiverID == b) || (msg.SenderID == b && msg.ReceiverID == a) {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

type FamilyRepository struct {
	mu      sync.Mutex
	members map[uuid.UUID]*model.FamilyMember
}

func NewFamilyRepository() *FamilyRepository {
	return &FamilyRepository{members: make(map[uuid.UUID]*model.FamilyMember)}
}

func (r *FamilyRepository) Create(ctx context.Context, member *model.FamilyMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member.ID = uuid.New()
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt
	cp := *member
	r.members[member.ID] = &cp
	return nil
}

func (r *FamilyRepository) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]*model.FamilyMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.FamilyMember
	for _, member := range r.members {
		if member.AccountID == accountID {
			cp := *member
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *FamilyRepository) Update(ctx context.Context, member *model.FamilyMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.members[member.ID]
	if !ok || existing.AccountID != member.AccountID {
		return repository.ErrNotFound
	}
	member.UpdatedAt = time.Now()
	cp := *member
	r.members[member.ID] = &cp
	return nil
}

func (r *FamilyRepository) Delete(ctx context.Context, accountID, memberID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.members[memberID]
	if !ok || member.AccountID != accountID {
		return repository.ErrNotFound
	}
	delete(r.members, memberID)
	return nil
}

type resetToken struct {
	accountID uuid.UUID
	expiresAt time.Time
}

type TokenRepository struct {
	mu     sync.Mutex
	tokens map[string]resetToken
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{tokens: make(map[string]resetToken)}
}

func (r *TokenRepository) StoreResetToken(ctx context.Context, accountID uuid.UUID, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token] = resetToken{accountID: accountID, expiresAt: expiry}
	return nil
}

func (r *TokenRepository) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[token]
	if !ok || time.Now().After(rt.expiresAt) {
		return uuid.Nil, repository.ErrNotFound
	}
	delete(r.tokens, token)
	return rt.accountID, nil
}

type OutboxRepository struct {
	mu     sync.Mutex
	events map[uuid.UUID]*model.OutboxEvent
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{events: make(map[uuid.UUID]*model.OutboxEvent)}
}

func (r *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.OutboxEvent
	for _, event := range r.events {
		if event.Status != model.OutboxStatusPending {
			continue
		}
		cp := *event
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	event.Status = model.OutboxStatusProcessed
	event.ProcessedAt = &now
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	event.Status = model.OutboxStatusFailed
	event.ErrorMessage = errorMessage
	return nil
}

func (r *OutboxRepository) IncrementRetry(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	event.RetryCount++
	return nil
}

func (r *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, event := range r.events {
		if event.Status == model.OutboxStatusProcessed && event.ProcessedAt != nil && event.ProcessedAt.Before(before) {
			delete(r.events, id)
			n++
		}
	}
	return n, nil
}
