package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/hocdan/guitarschool/apps/api/echo"
	"github.com/hocdan/guitarschool/core"
	"github.com/hocdan/guitarschool/core/exam"
	"github.com/hocdan/guitarschool/core/schedule"
	logsvc "github.com/hocdan/guitarschool/services/logger"
	dummydb "github.com/hocdan/guitarschool/storage/database/dummy"
)

type testApp struct {
	server   *echoapi.Server
	classSvc schedule.Service
	examSvc  exam.Service
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	return validate, translator
}

func setup(t *testing.T) testApp {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	validate, translator := newValidator()
	logger := logsvc.NewNopLogger()
	conf := &core.Config{
		TestMode: true,
		Server:   core.ServerConfig{DisableReqLogs: true},
	}

	app := testApp{
		classSvc: schedule.NewService(dummydb.NewClassRepository(db), validate, logger),
		examSvc:  exam.NewService(dummydb.NewExamRepository(db), validate, logger),
	}
	app.server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		ClassSvc:   app.classSvc,
		ExamSvc:    app.examSvc,
		Validate:   validate,
		Translator: translator,
	})
	return app
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func (app testApp) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.do(method, tt.path, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	assert.Equal(t, wantCode, rec.Code, rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHome(t *testing.T) {
	app := setup(t)
	rec := app.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Hoc Dan API!", rec.Body.String())

	rec = app.do(http.MethodGet, "/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
