package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/Jason121485/StudyMate-AI/app/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	users   map[int64]*models.User
	byEmail map[string]int64
	tasks   map[int64]*models.Task
	history []models.HistoryItem
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   map[int64]*models.User{},
		byEmail: map[string]int64{},
		tasks:   map[int64]*models.Task{},
	}
}

func (f *fakeStore) addUser(u models.User) models.User {
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = &u
	f.byEmail[u.Email] = u.ID
	return u
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return *u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return *f.users[id], nil
}

func (f *fakeStore) CreateUser(_ context.Context, email, credential, name, lastRequestDate string) (models.User, error) {
	return f.addUser(models.User{
		Email:           email,
		Credential:      credential,
		Name:            name,
		Subscription:    models.SubscriptionFree,
		LastRequestDate: lastRequestDate,
	}), nil
}

func (f *fakeStore) ResetUsage(_ context.Context, userID int64, today string) error {
	u, ok := f.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	u.RequestCount = 0
	u.LastRequestDate = today
	return nil
}

func (f *fakeStore) IncrementUsage(_ context.Context, userID int64) error {
	u, ok := f.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	u.RequestCount++
	return nil
}

func (f *fakeStore) ReserveUsage(_ context.Context, userID int64) (models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	if u.Subscription == models.SubscriptionPremium {
		return *u, nil
	}
	today := todayUTC(time.Now())
	if u.LastRequestDate != today {
		u.RequestCount = 0
		u.LastRequestDate = today
	}
	if u.RequestCount+1 > FreeDailyLimit {
		return *u, quotaError{Limit: FreeDailyLimit, Used: u.RequestCount}
	}
	u.RequestCount++
	return *u, nil
}

func (f *fakeStore) UpgradeSubscription(_ context.Context, userID int64) (models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	u.Subscription = models.SubscriptionPremium
	return *u, nil
}

func (f *fakeStore) ListTasks(_ context.Context, userID int64) ([]models.Task, error) {
	out := []models.Task{}
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline < out[j].Deadline })
	return out, nil
}

func (f *fakeStore) CreateTask(_ context.Context, task models.Task) (models.Task, error) {
	f.nextID++
	task.ID = f.nextID
	f.tasks[task.ID] = &task
	return task, nil
}

func (f *fakeStore) SetTaskCompleted(_ context.Context, taskID int64, completed bool) error {
	t, ok := f.tasks[taskID]
	if !ok {
		return sql.ErrNoRows
	}
	t.Completed = completed
	return nil
}

func (f *fakeStore) ListHistory(_ context.Context, userID int64) ([]models.HistoryItem, error) {
	out := []models.HistoryItem{}
	for _, h := range f.history {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > historyPageSize {
		out = out[:historyPageSize]
	}
	return out, nil
}

func (f *fakeStore) AppendHistory(_ context.Context, item models.HistoryItem) error {
	f.nextID++
	item.ID = f.nextID
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}
	f.history = append(f.history, item)
	return nil
}

type fakeAI struct {
	structured json.RawMessage
	text       string
}

func (a *fakeAI) AssignmentHelp(context.Context, string, string, string, models.GradeLevel) (json.RawMessage, error) {
	return a.structured, nil
}

func (a *fakeAI) ResearchAssistance(context.Context, string) (json.RawMessage, error) {
	return a.structured, nil
}

func (a *fakeAI) StudyExplanation(context.Context, string, models.Difficulty) (string, error) {
	return a.text, nil
}

func newTestRouter(store Store) *gin.Engine {
	ai := &fakeAI{
		structured: json.RawMessage(`{"explanation":"because","steps":["one"],"example":"x"}`),
		text:       "plain explanation",
	}
	return NewServer(store, ai, nil, nil, "http://localhost:3000").NewRouter()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	out := map[string]any{}
	if resp.Body.Len() > 0 && resp.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal response %q: %v", resp.Body.String(), err)
		}
	}
	return resp, out
}

func TestLoginCreatesUserWithDefaults(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	resp, body := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "brandnew@school.test",
		"password": "hunter22",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	if body["subscription"] != "free" {
		t.Fatalf("expected free tier, got %v", body["subscription"])
	}
	if body["request_count"] != float64(0) {
		t.Fatalf("expected zero request count, got %v", body["request_count"])
	}
	if body["name"] != "brandnew" {
		t.Fatalf("expected local-part display name, got %v", body["name"])
	}
	if body["last_request_date"] != todayUTC(time.Now()) {
		t.Fatalf("expected today's date, got %v", body["last_request_date"])
	}
}

func TestLoginVerifiesCredential(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	resp, first := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "ann@school.test",
		"password": "correct-horse",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on first login, got %d", resp.Code)
	}

	resp, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "ann@school.test",
		"password": "wrong-horse",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.Code)
	}

	resp, second := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "ann@school.test",
		"password": "correct-horse",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on returning login, got %d", resp.Code)
	}
	if first["id"] != second["id"] {
		t.Fatalf("returning login should resolve the same row: %v vs %v", first["id"], second["id"])
	}
}

func TestLoginMissingFields(t *testing.T) {
	router := newTestRouter(newFakeStore())
	resp, _ := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{"email": "x@y.test"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestUsageCheckIncrementScenario(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{
		Email:           "k4@school.test",
		Subscription:    models.SubscriptionFree,
		RequestCount:    4,
		LastRequestDate: todayUTC(time.Now()),
	})

	resp, body := doJSON(t, router, http.MethodPost, "/api/usage/check", gin.H{"userId": user.ID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body["count"] != float64(4) || body["limit"] != float64(5) || body["canRequest"] != true {
		t.Fatalf("expected {4,5,true}, got %v", body)
	}

	resp, body = doJSON(t, router, http.MethodPost, "/api/usage/increment", gin.H{"userId": user.ID})
	if resp.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("expected increment success, got %d %v", resp.Code, body)
	}

	resp, body = doJSON(t, router, http.MethodPost, "/api/usage/check", gin.H{"userId": user.ID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body["count"] != float64(5) || body["canRequest"] != false {
		t.Fatalf("expected {5,5,false}, got %v", body)
	}
}

func TestUsageCheckResetsStaleDate(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{
		Email:           "stale@school.test",
		Subscription:    models.SubscriptionFree,
		RequestCount:    5,
		LastRequestDate: "2020-01-01",
	})

	resp, body := doJSON(t, router, http.MethodPost, "/api/usage/check", gin.H{"userId": user.ID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body["count"] != float64(0) || body["canRequest"] != true {
		t.Fatalf("expected stale counter treated as 0, got %v", body)
	}

	stored, _ := store.GetUserByID(context.Background(), user.ID)
	if stored.RequestCount != 0 || stored.LastRequestDate != todayUTC(time.Now()) {
		t.Fatalf("expected persisted reset, got %+v", stored)
	}
}

func TestUsageCheckPremiumUnlimited(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{
		Email:           "vip@school.test",
		Subscription:    models.SubscriptionPremium,
		RequestCount:    123,
		LastRequestDate: todayUTC(time.Now()),
	})

	resp, body := doJSON(t, router, http.MethodPost, "/api/usage/check", gin.H{"userId": user.ID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body["limit"] != nil {
		t.Fatalf("expected null limit for premium, got %v", body["limit"])
	}
	if body["canRequest"] != true {
		t.Fatalf("premium must always be allowed, got %v", body)
	}
}

func TestUsageCheckUnknownUser(t *testing.T) {
	router := newTestRouter(newFakeStore())
	resp, _ := doJSON(t, router, http.MethodPost, "/api/usage/check", gin.H{"userId": 404})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestUpgradeIsIdempotent(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{
		Email:        "up@school.test",
		Subscription: models.SubscriptionFree,
	})

	for i := 0; i < 2; i++ {
		resp, body := doJSON(t, router, http.MethodPost, "/api/subscription/upgrade", gin.H{
			"userId": user.ID,
			"plan":   "monthly",
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("upgrade %d: expected 200, got %d", i, resp.Code)
		}
		if body["subscription"] != "premium" {
			t.Fatalf("upgrade %d: expected premium, got %v", i, body["subscription"])
		}
	}
}

func TestUpgradeRejectsUnknownPlan(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{Email: "p@school.test"})

	resp, _ := doJSON(t, router, http.MethodPost, "/api/subscription/upgrade", gin.H{
		"userId": user.ID,
		"plan":   "lifetime",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTaskRoundTrip(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{Email: "t@school.test"})

	resp, created := doJSON(t, router, http.MethodPost, "/api/tasks", gin.H{
		"userId":   user.ID,
		"name":     "Essay draft",
		"subject":  "History",
		"deadline": "2019-05-01", // past-due stays visible
		"priority": "high",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tasks/%d", user.ID), nil)
	listResp := httptest.NewRecorder()
	router.ServeHTTP(listResp, req)
	if listResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listResp.Code)
	}

	var tasks []models.Task
	if err := json.Unmarshal(listResp.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("unmarshal tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Name != "Essay draft" || got.Subject != "History" || got.Deadline != "2019-05-01" || got.Priority != models.PriorityHigh || got.Completed {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	resp, _ = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/tasks/%v", created["id"]), gin.H{"completed": true})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on toggle, got %d", resp.Code)
	}

	listResp = httptest.NewRecorder()
	router.ServeHTTP(listResp, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tasks/%d", user.ID), nil))
	if err := json.Unmarshal(listResp.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("unmarshal tasks: %v", err)
	}
	if !tasks[0].Completed {
		t.Fatalf("expected completion flag set after toggle")
	}
	if tasks[0].Name != "Essay draft" || tasks[0].Deadline != "2019-05-01" {
		t.Fatalf("toggle must only change the flag: %+v", tasks[0])
	}
}

func TestToggleUnknownTask(t *testing.T) {
	router := newTestRouter(newFakeStore())
	resp, _ := doJSON(t, router, http.MethodPatch, "/api/tasks/999", gin.H{"completed": true})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestTaskListOrderedByDeadline(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{Email: "o@school.test"})

	for _, deadline := range []string{"2026-03-01", "2026-01-15", "2026-02-10"} {
		resp, _ := doJSON(t, router, http.MethodPost, "/api/tasks", gin.H{
			"userId":   user.ID,
			"name":     "task " + deadline,
			"subject":  "Math",
			"deadline": deadline,
			"priority": "low",
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("create failed: %d", resp.Code)
		}
	}

	listResp := httptest.NewRecorder()
	router.ServeHTTP(listResp, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tasks/%d", user.ID), nil))

	var tasks []models.Task
	if err := json.Unmarshal(listResp.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("unmarshal tasks: %v", err)
	}
	want := []string{"2026-01-15", "2026-02-10", "2026-03-01"}
	for i, deadline := range want {
		if tasks[i].Deadline != deadline {
			t.Fatalf("expected deadline order %v, got %+v", want, tasks)
		}
	}
}

func TestHistoryNewestFirstCapped(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{Email: "h@school.test"})

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		store.history = append(store.history, models.HistoryItem{
			ID:        int64(i + 1),
			UserID:    user.ID,
			Type:      models.HistoryTypeResearch,
			Query:     fmt.Sprintf("topic %d", i),
			Response:  "{}",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	listResp := httptest.NewRecorder()
	router.ServeHTTP(listResp, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/history/%d", user.ID), nil))
	if listResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listResp.Code)
	}

	var items []models.HistoryItem
	if err := json.Unmarshal(listResp.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(items) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(items))
	}
	if items[0].Query != "topic 24" {
		t.Fatalf("expected newest first, got %q", items[0].Query)
	}
	for i := 1; i < len(items); i++ {
		if items[i].Timestamp.After(items[i-1].Timestamp) {
			t.Fatalf("history not strictly newest-first at index %d", i)
		}
	}
}

func TestAppendHistoryEndpoint(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{Email: "ah@school.test"})

	resp, body := doJSON(t, router, http.MethodPost, "/api/history", gin.H{
		"userId":   user.ID,
		"type":     "explainer",
		"query":    "photosynthesis",
		"response": "chlorophyll does the work",
	})
	if resp.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("expected success, got %d %v", resp.Code, body)
	}
	if len(store.history) != 1 || store.history[0].Query != "photosynthesis" {
		t.Fatalf("expected appended row, got %+v", store.history)
	}
}

func TestAssignmentEndpointConsumesQuota(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{
		Email:           "quota@school.test",
		Subscription:    models.SubscriptionFree,
		RequestCount:    4,
		LastRequestDate: todayUTC(time.Now()),
	})

	payload := gin.H{
		"userId":       user.ID,
		"subject":      "Biology",
		"topic":        "Mitosis",
		"instructions": "Summarize the phases",
		"gradeLevel":   "college",
	}

	resp, body := doJSON(t, router, http.MethodPost, "/api/ai/assignment", payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	usage := body["usage"].(map[string]any)
	if usage["count"] != float64(5) || usage["limit"] != float64(5) {
		t.Fatalf("expected count raised to the limit, got %v", usage)
	}
	if len(store.history) != 1 || store.history[0].Type != models.HistoryTypeAssignment {
		t.Fatalf("expected assignment history row, got %+v", store.history)
	}

	resp, body = doJSON(t, router, http.MethodPost, "/api/ai/assignment", payload)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once exhausted, got %d", resp.Code)
	}
	if body["count"] != float64(5) || body["limit"] != float64(5) {
		t.Fatalf("expected quota standing in denial, got %v", body)
	}
	if len(store.history) != 1 {
		t.Fatalf("denied request must not append history")
	}
}

func TestExplainEndpointPremiumBypass(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	user := store.addUser(models.User{
		Email:           "vip2@school.test",
		Subscription:    models.SubscriptionPremium,
		RequestCount:    777,
		LastRequestDate: "2020-01-01",
	})

	resp, body := doJSON(t, router, http.MethodPost, "/api/ai/explain", gin.H{
		"userId":     user.ID,
		"topic":      "entropy",
		"difficulty": "advanced",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if body["result"] != "plain explanation" {
		t.Fatalf("unexpected result: %v", body["result"])
	}
	usage := body["usage"].(map[string]any)
	if usage["limit"] != nil {
		t.Fatalf("expected null limit for premium, got %v", usage)
	}

	stored, _ := store.GetUserByID(context.Background(), user.ID)
	if stored.RequestCount != 777 {
		t.Fatalf("premium counter must never change, got %d", stored.RequestCount)
	}
}
