package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lcutils/internal/config"
	"lcutils/internal/domain"
	"lcutils/internal/port"
	"lcutils/internal/service"
	"lcutils/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newBlobService(storage *mocks.MockObjectStorage) service.BlobService {
	return service.NewBlobService(storage, &config.StorageConfig{MaxUploadSizeMB: 1}, testLogger())
}

func TestBlobService_ListNames(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("List", mock.Anything, "fuelcast-data", "projections/").Return([]domain.BlobInfo{
		{Bucket: "fuelcast-data", Name: "projections/a.tif"},
		{Bucket: "fuelcast-data", Name: "projections/b.json"},
	}, nil)

	names, err := svc.ListNames(context.Background(), "fuelcast-data", "projections/")
	require.NoError(t, err)
	assert.Equal(t, []string{"projections/a.tif", "projections/b.json"}, names)
	storage.AssertExpectations(t)
}

func TestBlobService_ListNames_Error(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("List", mock.Anything, "missing", "").Return(nil, domain.ErrNotFound)

	_, err := svc.ListNames(context.Background(), "missing", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlobService_ListTIFURIsByYear(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("List", mock.Anything, "rpms", "").Return([]domain.BlobInfo{
		{Name: "annual/rpms_2020_herb.tif"},
		{Name: "annual/rpms_2021_herb.tif"},
		{Name: "annual/rpms_2020_shrub.tif"},
		{Name: "annual/rpms_2020_herb.tif.aux.xml"},
		{Name: "annual/readme.txt"},
		{Name: "annual/undated.tif"},
	}, nil)

	got, err := svc.ListTIFURIsByYear(context.Background(), "rpms", "")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"2020": {"gs://rpms/annual/rpms_2020_herb.tif", "gs://rpms/annual/rpms_2020_shrub.tif"},
		"2021": {"gs://rpms/annual/rpms_2021_herb.tif"},
	}, got)
}

func TestBlobService_ListTIFURIsByYear_FirstRunWins(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("List", mock.Anything, "b", "").Return([]domain.BlobInfo{
		{Name: "1999/rpms_2020.tif"},
	}, nil)

	got, err := svc.ListTIFURIsByYear(context.Background(), "b", "")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"1999": {"gs://b/1999/rpms_2020.tif"}}, got)
}

func TestBlobService_DownloadTemp(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("Download", mock.Anything, "b", "k.tif", mock.Anything).Return([]byte("raster"), nil)

	f, err := svc.DownloadTemp(context.Background(), "b", "k.tif")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	})

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "raster", string(data))
}

func TestBlobService_DownloadTemp_RemovesFileOnError(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("Download", mock.Anything, "b", "gone", mock.Anything).Return(nil, domain.ErrNotFound)

	f, err := svc.DownloadTemp(context.Background(), "b", "gone")
	assert.Nil(t, f)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlobService_Download(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)
	dst := filepath.Join(t.TempDir(), "out.tif")

	storage.On("Download", mock.Anything, "b", "k", mock.Anything).Return([]byte("bytes"), nil)

	require.NoError(t, svc.Download(context.Background(), "b", "k", dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))
}

func TestBlobService_Download_ErrorRemovesPartialFile(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)
	dst := filepath.Join(t.TempDir(), "out.tif")

	storage.On("Download", mock.Anything, "b", "k", mock.Anything).Return(nil, errors.New("network"))

	assert.Error(t, svc.Download(context.Background(), "b", "k", dst))
	_, err := os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestBlobService_Upload_TooLarge(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	_, err := svc.Upload(context.Background(), "b", "k", strings.NewReader(""), 2*1024*1024, "image/tiff")
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestBlobService_Upload_UnknownSize(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "b" && in.Key == "k" && in.Size == -1
	})).Return(&port.UploadOutput{Location: "gs://b/k"}, nil)

	out, err := svc.Upload(context.Background(), "b", "k", strings.NewReader("x"), -1, "")
	require.NoError(t, err)
	assert.Equal(t, "gs://b/k", out.Location)
}

func TestBlobService_Upload_StorageFailure(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("503"))

	_, err := svc.Upload(context.Background(), "b", "k", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
}

func TestBlobService_Move(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("Copy", mock.Anything, "src", "a.tif", "dst", "b.tif").Return(nil).Once()
	storage.On("Delete", mock.Anything, "src", "a.tif").Return(nil).Once()

	require.NoError(t, svc.Move(context.Background(), "src", "a.tif", "dst", "b.tif"))
	storage.AssertExpectations(t)
}

func TestBlobService_Move_CopyFailureKeepsSource(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("Copy", mock.Anything, "src", "a.tif", "dst", "b.tif").Return(domain.ErrNotFound)

	err := svc.Move(context.Background(), "src", "a.tif", "dst", "b.tif")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestBlobService_MakePublic(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("MakePublic", mock.Anything, "b", "k").Return("https://storage.googleapis.com/b/k", nil)

	url, err := svc.MakePublic(context.Background(), "b", "k")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/b/k", url)
}

func buildFileHeaders(t *testing.T, files map[string]string) map[string]*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	out := make(map[string]*multipart.FileHeader)
	for field, headers := range form.File {
		out[field] = headers[0]
	}
	return out
}

type uploadRecorder struct {
	mu      sync.Mutex
	objects map[string]string
}

func (r *uploadRecorder) record(args mock.Arguments) {
	in := args.Get(1).(port.UploadInput)
	data, _ := io.ReadAll(in.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[in.Key] = string(data)
}

func TestBlobService_UploadInputGroup(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)
	rec := &uploadRecorder{objects: map[string]string{}}

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "hwpc"
	})).Run(rec.record).Return(&port.UploadOutput{}, nil)

	group := service.InputGroup{
		Fields: map[string]string{
			"region":      "west",
			"start_year":  "1990",
			"empty_field": "",
		},
		Files: buildFileHeaders(t, map[string]string{
			"harvest_data": "year,amount\n1990,10\n",
			"empty_file":   "",
		}),
	}

	res, err := svc.UploadInputGroup(context.Background(), "hwpc", "hwpc-user-inputs/abc/", group)
	require.NoError(t, err)

	want := map[string]string{
		"region":       "hwpc-user-inputs/abc/region",
		"start_year":   "hwpc-user-inputs/abc/start_year",
		"harvest_data": "hwpc-user-inputs/abc/harvest_data",
	}
	assert.Equal(t, "hwpc-user-inputs/abc/", res.Prefix)
	assert.Equal(t, domain.InputGroupManifest(want), res.Manifest)

	assert.Equal(t, "west", rec.objects["hwpc-user-inputs/abc/region"])
	assert.Equal(t, "year,amount\n1990,10\n", rec.objects["hwpc-user-inputs/abc/harvest_data"])
	assert.NotContains(t, rec.objects, "hwpc-user-inputs/abc/empty_field")
	assert.NotContains(t, rec.objects, "hwpc-user-inputs/abc/empty_file")

	var manifest map[string]string
	require.NoError(t, json.Unmarshal([]byte(rec.objects["hwpc-user-inputs/abc/user_input.json"]), &manifest))
	assert.Equal(t, want, manifest)
}

func TestBlobService_UploadInputGroup_GeneratedPrefix(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)

	res, err := svc.UploadInputGroup(context.Background(), "hwpc", "", service.InputGroup{
		Fields: map[string]string{"region": "west"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Prefix, service.InputGroupRoot))
	assert.True(t, strings.HasSuffix(res.Prefix, "/"))
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(res.Prefix, service.InputGroupRoot), "/"), 36)
	storage.AssertNumberOfCalls(t, "Upload", 2)
}

func TestBlobService_UploadInputGroup_StopsOnFailure(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	svc := newBlobService(storage)

	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("quota"))

	_, err := svc.UploadInputGroup(context.Background(), "hwpc", "p/", service.InputGroup{
		Fields: map[string]string{"a": "1", "b": "2"},
	})
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	storage.AssertNumberOfCalls(t, "Upload", 1)
}

func TestBlobService_UploadInputGroup_RejectsCollidingKeys(t *testing.T) {
	tests := []struct {
		name  string
		group func(t *testing.T) service.InputGroup
	}{
		{
			name: "field and file share a key",
			group: func(t *testing.T) service.InputGroup {
				return service.InputGroup{
					Fields: map[string]string{"boundary": "west"},
					Files:  buildFileHeaders(t, map[string]string{"boundary": "shape"}),
				}
			},
		},
		{
			name: "field named like the manifest",
			group: func(t *testing.T) service.InputGroup {
				return service.InputGroup{
					Fields: map[string]string{service.InputGroupManifestName: "{}"},
				}
			},
		},
		{
			name: "file named like the manifest",
			group: func(t *testing.T) service.InputGroup {
				return service.InputGroup{
					Files: buildFileHeaders(t, map[string]string{service.InputGroupManifestName: "{}"}),
				}
			},
		},
		{
			name: "empty key",
			group: func(t *testing.T) service.InputGroup {
				return service.InputGroup{Fields: map[string]string{"": "x"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := new(mocks.MockObjectStorage)
			svc := newBlobService(storage)

			_, err := svc.UploadInputGroup(context.Background(), "hwpc", "p/", tt.group(t))
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
			storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		})
	}
}
