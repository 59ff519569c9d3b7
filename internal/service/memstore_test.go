package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"chatlog-api/internal/domain"
	"chatlog-api/internal/repository"
)

// memStore emula repository.Store en memoria, con FK, cascada y
// transacciones que solo publican el estado al hacer commit.
type memStore struct {
	db    *memDB
	state *memState
	inTx  bool
}

type memDB struct {
	root      memState
	now       time.Time
	commits   int
	rollbacks int

	getErr        error
	listErr       error
	touchErr      error
	createConvErr map[string]error
	createFileErr error
}

type memState struct {
	chats map[uuid.UUID]domain.Chat
	convs []domain.Conversation
	files []domain.File
}

func newMemStore() *memStore {
	db := &memDB{
		root:          memState{chats: map[uuid.UUID]domain.Chat{}},
		now:           time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		createConvErr: map[string]error{},
	}
	return &memStore{db: db, state: &db.root}
}

func (s memState) clone() memState {
	out := memState{chats: make(map[uuid.UUID]domain.Chat, len(s.chats))}
	for k, v := range s.chats {
		out.chats[k] = v
	}
	out.convs = append([]domain.Conversation(nil), s.convs...)
	out.files = append([]domain.File(nil), s.files...)
	return out
}

func (db *memDB) tick() time.Time {
	db.now = db.now.Add(time.Millisecond)
	return db.now
}

func (s *memStore) Chats() repository.ChatRepository                 { return memChats{s} }
func (s *memStore) Conversations() repository.ConversationRepository { return memConvs{s} }
func (s *memStore) Files() repository.FileRepository                 { return memFiles{s} }

func (s *memStore) WithTx(_ context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	staged := s.state.clone()
	if err := fn(&memStore{db: s.db, state: &staged, inTx: true}); err != nil {
		s.db.rollbacks++
		return err
	}
	*s.state = staged
	s.db.commits++
	return nil
}

func (s *memStore) conversationsFor(chatID uuid.UUID) []domain.Conversation {
	var out []domain.Conversation
	for _, c := range s.state.convs {
		if c.ChatID == chatID {
			out = append(out, c)
		}
	}
	return out
}

func (s *memStore) addChat(name string) domain.Chat {
	at := s.db.tick()
	chat := domain.Chat{ID: uuid.New(), Name: &name, CreatedAt: at, UpdatedAt: at}
	s.state.chats[chat.ID] = chat
	return chat
}

type memChats struct{ s *memStore }

func (r memChats) Create(_ context.Context, chat domain.Chat) (domain.Chat, error) {
	at := r.s.db.tick()
	chat.CreatedAt, chat.UpdatedAt = at, at
	r.s.state.chats[chat.ID] = chat
	return chat, nil
}

func (r memChats) GetByID(_ context.Context, id uuid.UUID) (domain.Chat, error) {
	if r.s.db.getErr != nil {
		return domain.Chat{}, r.s.db.getErr
	}
	chat, ok := r.s.state.chats[id]
	if !ok {
		return domain.Chat{}, repository.ErrNotFound
	}
	return chat, nil
}

func (r memChats) List(_ context.Context) ([]domain.ChatSummary, error) {
	if r.s.db.listErr != nil {
		return nil, r.s.db.listErr
	}
	chats := make([]domain.Chat, 0, len(r.s.state.chats))
	for _, c := range r.s.state.chats {
		chats = append(chats, c)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].CreatedAt.Before(chats[j].CreatedAt) })
	out := make([]domain.ChatSummary, 0, len(chats))
	for _, c := range chats {
		out = append(out, domain.ChatSummary{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

func (r memChats) Touch(_ context.Context, id uuid.UUID) (time.Time, error) {
	if r.s.db.touchErr != nil {
		return time.Time{}, r.s.db.touchErr
	}
	chat, ok := r.s.state.chats[id]
	if !ok {
		return time.Time{}, repository.ErrNotFound
	}
	chat.UpdatedAt = r.s.db.tick()
	r.s.state.chats[id] = chat
	return chat.UpdatedAt, nil
}

func (r memChats) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.state.chats[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.state.chats, id)
	convs := r.s.state.convs[:0]
	for _, c := range r.s.state.convs {
		if c.ChatID != id {
			convs = append(convs, c)
		}
	}
	r.s.state.convs = convs
	files := r.s.state.files[:0]
	for _, f := range r.s.state.files {
		if f.ChatID != id {
			files = append(files, f)
		}
	}
	r.s.state.files = files
	return nil
}

type memConvs struct{ s *memStore }

func (r memConvs) Create(_ context.Context, conv domain.Conversation) (domain.Conversation, error) {
	if err := r.s.db.createConvErr[conv.Role]; err != nil {
		return domain.Conversation{}, err
	}
	if _, ok := r.s.state.chats[conv.ChatID]; !ok {
		return domain.Conversation{}, repository.ErrNotFound
	}
	at := r.s.db.tick()
	conv.CreatedAt, conv.UpdatedAt = at, at
	r.s.state.convs = append(r.s.state.convs, conv)
	return conv, nil
}

func (r memConvs) ListByChatID(_ context.Context, chatID uuid.UUID) ([]domain.Conversation, error) {
	if r.s.db.listErr != nil {
		return nil, r.s.db.listErr
	}
	out := []domain.Conversation{}
	out = append(out, r.s.conversationsFor(chatID)...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memFiles struct{ s *memStore }

func (r memFiles) Create(_ context.Context, file domain.File) (domain.File, error) {
	if r.s.db.createFileErr != nil {
		return domain.File{}, r.s.db.createFileErr
	}
	if _, ok := r.s.state.chats[file.ChatID]; !ok {
		return domain.File{}, repository.ErrNotFound
	}
	at := r.s.db.tick()
	file.CreatedAt, file.UpdatedAt = at, at
	r.s.state.files = append(r.s.state.files, file)
	return file, nil
}

func (r memFiles) ListByChatID(_ context.Context, chatID uuid.UUID) ([]domain.File, error) {
	out := []domain.File{}
	for _, f := range r.s.state.files {
		if f.ChatID == chatID {
			out = append(out, f)
		}
	}
	return out, nil
}
