// Package integrationtest runs the service against a real MySQL database.
// The tests are skipped unless DBHOST is set; CI brings up the database,
// applies scripts/database.sql and sets DBHOST/DBUSER/DBPWD before running.
package integrationtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"gitlab.com/william.mucha/users-service/internal/codec"
	"gitlab.com/william.mucha/users-service/internal/model"
	"gitlab.com/william.mucha/users-service/internal/service"
	"gitlab.com/william.mucha/users-service/internal/session"
	"gitlab.com/william.mucha/users-service/internal/store"
)

func createRouter(t *testing.T) *gin.Engine {
	t.Helper()
	if os.Getenv("DBHOST") == "" {
		t.Skip("DBHOST not set; skipping integration tests")
	}
	sqlDB, err := store.CreateDatabase()
	if err != nil {
		t.Fatal(err)
	}
	gateway, err := store.NewSQL(sqlDB)
	if err != nil {
		t.Fatal(err)
	}
	c := codec.New()
	sess := session.New(gateway, c, zap.NewNop())
	gin.SetMode(gin.ReleaseMode)
	return service.NewServer(gateway, sess, zap.NewNop()).SetupHttpRouter()
}

func run(router *gin.Engine, method string, url string, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest(method, url, strings.NewReader(body))
	router.ServeHTTP(recorder, request)
	return recorder
}

func rowsOf(t *testing.T, recorder *httptest.ResponseRecorder) []model.ViewRow {
	t.Helper()
	var rows []model.ViewRow
	if err := json.Unmarshal(recorder.Body.Bytes(), &rows); err != nil {
		t.Fatalf("could not unmarshal rows: %s", err)
	}
	return rows
}

// TestUserHappyPath walks the whole lifecycle: add through the form, see the
// row in the table, edit through the form, delete from the table.
func TestUserHappyPath(t *testing.T) {
	router := createRouter(t)

	// open the add form and submit a new user
	assert.Equal(t, http.StatusOK, run(router, "POST", "/form/add", "").Code)
	submitRecorder := run(router, "POST", "/form/submit", `{
		"name": "Erika Mustermann",
		"year": 1969,
		"month": 3,
		"day": 2,
		"country": {"value": "USA", "label": "USA"},
		"city": {"value": "Chicago", "label": "Chicago"}
	}`)
	assert.Equal(t, http.StatusOK, submitRecorder.Code)

	// the refreshed table contains the new row exactly once
	var id string
	count := 0
	for _, row := range rowsOf(t, submitRecorder) {
		if row.Name == "Erika Mustermann" && row.Dob == "1969-03-02" {
			id = row.Id
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.NotEmpty(t, id)

	// open the edit form; the draft carries the split date
	editRecorder := run(router, "POST", "/form/edit/"+id, "")
	assert.Equal(t, http.StatusOK, editRecorder.Code)
	var opened struct {
		Draft model.FormDraft `json:"draft"`
	}
	json.Unmarshal(editRecorder.Body.Bytes(), &opened)
	assert.Equal(t, 1969, opened.Draft.Year)
	assert.Equal(t, 3, opened.Draft.Month)
	assert.Equal(t, 2, opened.Draft.Day)

	// change the city and submit; the table reflects the replace
	updateRecorder := run(router, "POST", "/form/submit", `{
		"name": "Erika Mustermann",
		"year": 1969,
		"month": 3,
		"day": 2,
		"country": {"value": "USA", "label": "USA"},
		"city": {"value": "Las Vegas", "label": "Las Vegas"}
	}`)
	assert.Equal(t, http.StatusOK, updateRecorder.Code)
	for _, row := range rowsOf(t, updateRecorder) {
		if row.Id == id {
			assert.Equal(t, "Las Vegas", row.City)
		}
	}

	// delete the row; a second delete of the same id is still success
	assert.Equal(t, http.StatusOK, run(router, "DELETE", "/users/"+id, "").Code)
	deleteAgainRecorder := run(router, "DELETE", "/users/"+id, "")
	assert.Equal(t, http.StatusOK, deleteAgainRecorder.Code)
	for _, row := range rowsOf(t, deleteAgainRecorder) {
		assert.NotEqual(t, id, row.Id)
	}
}

// TestRejectedDraftNeverPersists submits an invalid draft and checks that the
// table does not change.
func TestRejectedDraftNeverPersists(t *testing.T) {
	router := createRouter(t)

	before := rowsOf(t, run(router, "GET", "/users", ""))

	assert.Equal(t, http.StatusOK, run(router, "POST", "/form/add", "").Code)
	recorder := run(router, "POST", "/form/submit", `{
		"name": "",
		"year": 2024,
		"month": 5,
		"day": 14,
		"country": {"value": "Canada", "label": "Canada"},
		"city": {"value": "Ottawa", "label": "Ottawa"}
	}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var verr codec.ValidationError
	json.Unmarshal(recorder.Body.Bytes(), &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"name", "year"}, fields)

	after := rowsOf(t, run(router, "GET", "/users", ""))
	assert.Equal(t, len(before), len(after))
}
