package teethevents

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/smilebloom/internal/domain/models"
	"github.com/dalemusser/smilebloom/internal/testutil"
)

type eventJSON struct {
	ID        string  `json:"id"`
	ChildID   string  `json:"child_id"`
	ToothCode *string `json:"tooth_code"`
	Type      string  `json:"type"`
	Remark    *string `json:"remark"`
}

func serve(t *testing.T, h *Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, req)
	return rec
}

// newChild inserts a child owned by the test user straight through the store.
func newChild(t *testing.T, h *Handler, tu testutil.TestUser, birthday time.Time) models.Child {
	t.Helper()
	ownerID, err := primitive.ObjectIDFromHex(tu.ID)
	if err != nil {
		t.Fatalf("bad test user id: %v", err)
	}
	ctx, cancel := testutil.TestContext()
	defer cancel()
	child, err := h.children.Create(ctx, models.Child{
		OwnerUserID: ownerID,
		FullName:    "Nong Mai",
		Birthday:    birthday,
		Gender:      models.GenderFemale,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return child
}

func createEvent(t *testing.T, h *Handler, tu testutil.TestUser, body string) eventJSON {
	t.Helper()
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", strings.NewReader(body), tu)
	rec := serve(t, h, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	var ev eventJSON
	if err := json.NewDecoder(rec.Body).Decode(&ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return ev
}

func TestCreateHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	tu := testutil.RegularUser()
	child := newChild(t, h, tu, time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC))

	body := fmt.Sprintf(`{"child_id":%q,"tooth_code":"51","type":"erupted","event_date":"2026-08-01","remark":"first tooth!"}`, child.ID.Hex())
	ev := createEvent(t, h, tu, body)

	if ev.Type != models.EventErupted {
		t.Errorf("type = %q, want ERUPTED", ev.Type)
	}
	if ev.ToothCode == nil || *ev.ToothCode != "51" {
		t.Errorf("tooth_code = %v, want 51", ev.ToothCode)
	}
	if ev.ChildID != child.ID.Hex() {
		t.Errorf("child_id = %q, want %q", ev.ChildID, child.ID.Hex())
	}
}

func TestCreateHandler_NoteWithoutToothCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	tu := testutil.RegularUser()
	child := newChild(t, h, tu, time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC))

	body := fmt.Sprintf(`{"child_id":%q,"type":"NOTE","remark":"dentist visit went fine"}`, child.ID.Hex())
	ev := createEvent(t, h, tu, body)
	if ev.ToothCode != nil {
		t.Errorf("tooth_code = %v, want nil for NOTE", *ev.ToothCode)
	}
}

func TestCreateHandler_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	tu := testutil.RegularUser()
	child := newChild(t, h, tu, time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC))
	id := child.ID.Hex()

	for name, body := range map[string]string{
		"bad type":              fmt.Sprintf(`{"child_id":%q,"tooth_code":"51","type":"GREW"}`, id),
		"unknown tooth code":    fmt.Sprintf(`{"child_id":%q,"tooth_code":"99","type":"ERUPTED"}`, id),
		"missing tooth code":    fmt.Sprintf(`{"child_id":%q,"type":"ERUPTED"}`, id),
		"empty tooth code shed": fmt.Sprintf(`{"child_id":%q,"tooth_code":"","type":"SHED"}`, id),
		"bad event date":        fmt.Sprintf(`{"child_id":%q,"tooth_code":"51","type":"ERUPTED","event_date":"yesterday"}`, id),
		"bad child id":          `{"child_id":"nope","tooth_code":"51","type":"ERUPTED"}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", strings.NewReader(body), tu)
			rec := serve(t, h, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateHandler_CrossAccountChildIs404(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	owner := testutil.RegularUser()
	stranger := testutil.RegularUser()
	child := newChild(t, h, owner, time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC))

	body := fmt.Sprintf(`{"child_id":%q,"tooth_code":"51","type":"ERUPTED"}`, child.ID.Hex())
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", strings.NewReader(body), stranger)
	rec := serve(t, h, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404; body %s", rec.Code, rec.Body.String())
	}
}

func TestListHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	tu := testutil.RegularUser()
	child := newChild(t, h, tu, time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC))
	other := newChild(t, h, tu, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC))

	createEvent(t, h, tu, fmt.Sprintf(`{"child_id":%q,"tooth_code":"51","type":"ERUPTED","event_date":"2026-01-01"}`, child.ID.Hex()))
	createEvent(t, h, tu, fmt.Sprintf(`{"child_id":%q,"tooth_code":"61","type":"ERUPTED","event_date":"2026-02-01"}`, child.ID.Hex()))
	createEvent(t, h, tu, fmt.Sprintf(`{"child_id":%q,"tooth_code":"11","type":"ERUPTED","event_date":"2026-03-01"}`, other.ID.Hex()))

	var out struct {
		Events []eventJSON `json:"events"`
	}

	// All events for the owner.
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/", nil, tu)
	rec := serve(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d; body %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(out.Events) != 3 {
		t.Fatalf("got %d events, want 3", len(out.Events))
	}
	// Newest event date first.
	if got := out.Events[0].ToothCode; got == nil || *got != "11" {
		t.Errorf("first event tooth = %v, want 11", got)
	}

	// Filtered to one child.
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/?childId="+child.ID.Hex(), nil, tu)
	rec = serve(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered list status = %d; body %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode filtered list: %v", err)
	}
	if len(out.Events) != 2 {
		t.Errorf("got %d events for child, want 2", len(out.Events))
	}

	// Limit caps the page.
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/?limit=1", nil, tu)
	rec = serve(t, h, req)
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode limited list: %v", err)
	}
	if len(out.Events) != 1 {
		t.Errorf("got %d events with limit=1, want 1", len(out.Events))
	}

	// Paging walks the order.
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/?limit=1&page=2", nil, tu)
	rec = serve(t, h, req)
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode paged list: %v", err)
	}
	if len(out.Events) != 1 {
		t.Fatalf("got %d events on page 2, want 1", len(out.Events))
	}
	if got := out.Events[0].ToothCode; got == nil || *got != "61" {
		t.Errorf("page 2 tooth = %v, want 61", got)
	}
}

func TestListHandler_BadQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	tu := testutil.RegularUser()

	for name, target := range map[string]string{
		"bad childId": "/?childId=nope",
		"bad limit":   "/?limit=-2",
		"bad page":    "/?page=0",
	} {
		t.Run(name, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest(http.MethodGet, target, nil, tu)
			rec := serve(t, h, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestDeleteHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	owner := testutil.RegularUser()
	stranger := testutil.RegularUser()
	child := newChild(t, h, owner, time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC))
	ev := createEvent(t, h, owner, fmt.Sprintf(`{"child_id":%q,"tooth_code":"51","type":"ERUPTED"}`, child.ID.Hex()))

	// A stranger cannot delete it.
	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+ev.ID, nil, stranger)
	rec := serve(t, h, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("stranger delete status = %d, want 404", rec.Code)
	}

	// The owner can.
	req = testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+ev.ID, nil, owner)
	rec = serve(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner delete status = %d; body %s", rec.Code, rec.Body.String())
	}

	// Deleting again is a 404.
	req = testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+ev.ID, nil, owner)
	rec = serve(t, h, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	tu := testutil.RegularUser()
	// Born roughly two years before the test runs, so deciduous windows apply.
	child := newChild(t, h, tu, time.Now().UTC().AddDate(-2, 0, 0))
	id := child.ID.Hex()

	createEvent(t, h, tu, fmt.Sprintf(`{"child_id":%q,"tooth_code":"51","type":"ERUPTED","event_date":"2026-01-01"}`, id))
	createEvent(t, h, tu, fmt.Sprintf(`{"child_id":%q,"tooth_code":"51","type":"SHED","event_date":"2026-06-01"}`, id))
	createEvent(t, h, tu, fmt.Sprintf(`{"child_id":%q,"tooth_code":"81","type":"ERUPTED","event_date":"2026-03-01"}`, id))
	createEvent(t, h, tu, fmt.Sprintf(`{"child_id":%q,"type":"NOTE","remark":"checkup"}`, id))

	var out struct {
		AgeMonths   int               `json:"age_months"`
		PerTooth    map[string]string `json:"per_tooth"`
		PerQuadrant map[string]string `json:"per_quadrant"`
		InWindow    []map[string]any  `json:"in_window"`
	}
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/status?childId="+id, nil, tu)
	rec := serve(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got := out.PerTooth["51"]; got != models.EventShed {
		t.Errorf("per_tooth[51] = %q, want SHED (latest event wins)", got)
	}
	if got := out.PerTooth["81"]; got != models.EventErupted {
		t.Errorf("per_tooth[81] = %q, want ERUPTED", got)
	}
	if got := out.PerQuadrant["UPPER_RIGHT"]; got != models.EventShed {
		t.Errorf("per_quadrant[UPPER_RIGHT] = %q, want SHED", got)
	}
	if out.AgeMonths < 23 || out.AgeMonths > 25 {
		t.Errorf("age_months = %d, want about 24", out.AgeMonths)
	}

	// Mirrored view flips left and right.
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/status?childId="+id+"&mirror=true", nil, tu)
	rec = serve(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("mirrored status = %d; body %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode mirrored: %v", err)
	}
	if got := out.PerQuadrant["UPPER_LEFT"]; got != models.EventShed {
		t.Errorf("mirrored per_quadrant[UPPER_LEFT] = %q, want SHED", got)
	}
}

func TestStatusHandler_NoEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	tu := testutil.RegularUser()
	child := newChild(t, h, tu, time.Now().UTC().AddDate(0, -8, 0))

	var out struct {
		PerTooth    map[string]string `json:"per_tooth"`
		PerQuadrant map[string]string `json:"per_quadrant"`
		InWindow    []map[string]any  `json:"in_window"`
	}
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/status?childId="+child.ID.Hex(), nil, tu)
	rec := serve(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.PerTooth == nil || len(out.PerTooth) != 0 {
		t.Errorf("per_tooth = %v, want empty object", out.PerTooth)
	}
	if out.PerQuadrant == nil || len(out.PerQuadrant) != 0 {
		t.Errorf("per_quadrant = %v, want empty object", out.PerQuadrant)
	}
	// An eight month old has central incisors in window.
	if len(out.InWindow) == 0 {
		t.Error("in_window is empty, want the deciduous incisors")
	}
}

func TestStatusHandler_CrossAccountIs404(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())
	owner := testutil.RegularUser()
	stranger := testutil.RegularUser()
	child := newChild(t, h, owner, time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC))

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/status?childId="+child.ID.Hex(), nil, stranger)
	rec := serve(t, h, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlers_Anonymous(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, nil, zap.NewNop())

	for _, target := range []string{"/", "/status?childId=" + primitive.NewObjectID().Hex()} {
		req := testutil.NewRequest(http.MethodGet, target, nil)
		rec := serve(t, h, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", target, rec.Code)
		}
	}
}
