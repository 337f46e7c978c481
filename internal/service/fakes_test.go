package service

import (
	"context"
	"sync"
	"time"

	"vouchy/internal/llm"
	"vouchy/internal/model"
)

type fakeSpaceRepo struct {
	spaces map[string]*model.Space
	err    error
}

func (f *fakeSpaceRepo) GetSpaceByID(_ context.Context, id string) (*model.Space, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.spaces[id], nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
	updates  map[string]model.Plan
}

func newFakeProfileRepo(profiles ...*model.Profile) *fakeProfileRepo {
	f := &fakeProfileRepo{profiles: map[string]*model.Profile{}, updates: map[string]model.Plan{}}
	for _, p := range profiles {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfileRepo) GetProfileByID(_ context.Context, id string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[id], nil
}

func (f *fakeProfileRepo) GetProfileByEmail(_ context.Context, email string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileRepo) UpdatePlan(_ context.Context, id string, plan model.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = plan
	if p, ok := f.profiles[id]; ok {
		p.Plan = plan
	}
	return nil
}

type fakeUsageRepo struct {
	count    int
	recorded []*model.AIUsage
	since    time.Time
}

func (f *fakeUsageRepo) CountSince(_ context.Context, _ string, since time.Time) (int, error) {
	f.since = since
	return f.count, nil
}

func (f *fakeUsageRepo) Record(_ context.Context, u *model.AIUsage) error {
	f.recorded = append(f.recorded, u)
	return nil
}

type fakePresigner struct {
	bucket, key, contentType string
	ttl                      time.Duration
	err                      error
}

func (f *fakePresigner) PresignPut(_ context.Context, bucket, key, contentType string, ttl time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.bucket, f.key, f.contentType, f.ttl = bucket, key, contentType, ttl
	return "https://signed.example.com/" + bucket + "/" + key + "?sig=1", nil
}

type fakeLLM struct {
	system, user string
	calls        int
	answer       string
	err          error
}

func (f *fakeLLM) Complete(_ context.Context, system, user string) (*llm.Completion, error) {
	f.calls++
	f.system, f.user = system, user
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Content: f.answer, Model: "test-model", PromptTokens: 10, CompletionTokens: 20}, nil
}

type fakePublisher struct {
	topic    string
	payloads [][]byte
}

func (f *fakePublisher) Publish(_ context.Context, topic string, payload []byte) (string, error) {
	f.topic = topic
	f.payloads = append(f.payloads, payload)
	return "msg-1", nil
}
