package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitconnect/vault-api/internal/dto"
	"github.com/bitconnect/vault-api/internal/middleware"
	"github.com/bitconnect/vault-api/internal/models"
	"github.com/bitconnect/vault-api/internal/service"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
)

type resourceServiceMock struct {
	uploadReq   dto.UploadResourceRequest
	uploadBody  []byte
	uploadName  string
	uploadErr   error
	browseQuery dto.BrowseQuery
	browseResp  []dto.ResourceView
	browseHit   bool
	getErr      error
}

func (m *resourceServiceMock) Upload(ctx context.Context, req dto.UploadResourceRequest, upload service.ResourceUpload) (*models.Resource, error) {
	m.uploadReq = req
	m.uploadName = upload.FileName
	m.uploadBody, _ = io.ReadAll(upload.Content)
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return &models.Resource{ID: "res-1", Status: models.ResourceStatusPending, FileName: upload.FileName}, nil
}

func (m *resourceServiceMock) Browse(ctx context.Context, q dto.BrowseQuery) ([]dto.ResourceView, bool, error) {
	m.browseQuery = q
	return m.browseResp, m.browseHit, nil
}

func (m *resourceServiceMock) Get(ctx context.Context, id string) (*dto.ResourceView, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.ResourceView{Resource: models.Resource{ID: id}}, nil
}

type voteServiceMock struct {
	voter     string
	direction models.VoteDirection
	outcome   *models.VoteOutcome
	err       error
}

func (m *voteServiceMock) State(ctx context.Context, voterID, resourceID string) (models.VoteState, error) {
	m.voter = voterID
	return models.VoteUp, nil
}

func (m *voteServiceMock) Apply(ctx context.Context, voterID, resourceID string, direction models.VoteDirection, displayed int) (*models.VoteOutcome, error) {
	m.voter = voterID
	m.direction = direction
	return m.outcome, m.err
}

func multipartUpload(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestResourceHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{}
	handler := NewResourceHandler(mockSvc, nil, 16<<20)

	body, contentType := multipartUpload(t, map[string]string{
		"branch": "computer-science-engineering", "semester": "5", "category": "class-notes", "subject": "OS",
	}, "os.pdf", []byte("%PDF-1.4"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Upload(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mockSvc.uploadReq.Semester)
	assert.Equal(t, 5, *mockSvc.uploadReq.Semester)
	assert.Equal(t, "os.pdf", mockSvc.uploadName)
	assert.Equal(t, []byte("%PDF-1.4"), mockSvc.uploadBody)
}

func TestResourceHandlerUploadWithoutFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{}
	handler := NewResourceHandler(mockSvc, nil, 0)

	body, contentType := multipartUpload(t, map[string]string{"branch": "computer-science-engineering"}, "", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockSvc.uploadName)
}

func TestResourceHandlerBrowseReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{browseResp: []dto.ResourceView{{Resource: models.Resource{ID: "a"}}}, browseHit: true}
	handler := NewResourceHandler(mockSvc, nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/resources?branch=first-year&stream=cse&cycle=p-cycle&category=see-pyqs", nil)

	handler.Browse(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cse", mockSvc.browseQuery.Stream)
	assert.Equal(t, "p-cycle", mockSvc.browseQuery.Cycle)

	var body struct {
		Data []dto.ResourceView    `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.EqualValues(t, 1, body.Meta["count"])
	assert.Equal(t, true, body.Meta["cache_hit"])
}

func TestResourceHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewResourceHandler(&resourceServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "resource not found")}, nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/resources/x", nil)
	c.Params = gin.Params{{Key: "id", Value: "x"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceHandlerVoteRollbackCarriesOutcome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	votes := &voteServiceMock{
		outcome: &models.VoteOutcome{ResourceID: "r1", State: models.VoteUp, Delta: 1, Displayed: 7},
		err:     appErrors.Clone(appErrors.ErrInternal, "failed to update votes"),
	}
	handler := NewResourceHandler(nil, votes, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources/r1/vote", bytes.NewBufferString(`{"direction":"UP","displayed":7}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "r1"}}
	middleware.VoterID(false)(c)

	handler.Vote(c)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, models.DirectionUp, votes.direction)
	assert.NotEmpty(t, votes.voter)

	var body struct {
		Data  models.VoteOutcome `json:"data"`
		Error *appErrors.Error   `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Data.Displayed)
	require.NotNil(t, body.Error)
}

func TestResourceHandlerVoteRejectsBadDirection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	votes := &voteServiceMock{}
	handler := NewResourceHandler(nil, votes, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources/r1/vote", bytes.NewBufferString(`{"direction":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Vote(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, votes.direction)
}
