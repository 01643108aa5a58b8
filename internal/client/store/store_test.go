package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * Fake repository
 *************/

type fakeBooks struct {
	mu      sync.Mutex
	list    []models.Book
	listErr error
	// listGate, when set, blocks List after it signals listStarted.
	listGate    chan struct{}
	listStarted chan struct{}

	created   models.Book
	createErr error
	// updateResp is the JSON body the server answers an update with.
	updateResp string
	updateErr  error
	deleteErr  error

	creates, updates, deletes int
}

func (f *fakeBooks) List(ctx context.Context) ([]models.Book, error) {
	f.mu.Lock()
	list, err, gate, started := append([]models.Book(nil), f.list...), f.listErr, f.listGate, f.listStarted
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return list, err
}

func (f *fakeBooks) Create(ctx context.Context, in models.BookInput) (models.Book, error) {
	f.creates++
	return f.created, f.createErr
}

func (f *fakeBooks) Update(ctx context.Context, id int64, patch models.BookPatch, into *models.Book) error {
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	return json.Unmarshal([]byte(f.updateResp), into)
}

func (f *fakeBooks) Delete(ctx context.Context, id int64) error {
	f.deletes++
	return f.deleteErr
}

func newBooks(repo *fakeBooks) *Store[models.Book, models.BookInput, models.BookPatch] {
	return New[models.Book, models.BookInput, models.BookPatch]("book", repo, logging.Discard())
}

var (
	dune   = models.Book{BookID: 1, Title: "Dune", AuthorID: 1, Genre: "SF", ISBN: "111", Quantity: 2}
	emma   = models.Book{BookID: 2, Title: "Emma", AuthorID: 2, Genre: "Novel", ISBN: "222", Quantity: 1}
	bookX  = models.Book{BookID: 7, Title: "X", AuthorID: 1, Genre: "G", ISBN: "123", Quantity: 3}
	inputX = models.BookInput{Title: "X", AuthorID: 1, Genre: "G", ISBN: "123", Quantity: 3}
)

func ptr[T any](v T) *T { return &v }

func loadedStore(t *testing.T, repo *fakeBooks, items ...models.Book) *Store[models.Book, models.BookInput, models.BookPatch] {
	t.Helper()
	repo.list = items
	s := newBooks(repo)
	s.Load(context.Background())
	require.True(t, s.Loaded())
	return s
}

/*************
 * Load
 *************/

func TestLoad_ReplacesList(t *testing.T) {
	repo := &fakeBooks{}
	s := loadedStore(t, repo, dune)

	repo.list = []models.Book{emma}
	s.Load(context.Background())

	assert.Equal(t, []models.Book{emma}, s.Items())
}

func TestLoad_FailureKeepsList(t *testing.T) {
	repo := &fakeBooks{}
	s := loadedStore(t, repo, dune, emma)

	repo.listErr = errors.New("boom")
	s.Load(context.Background())

	assert.Equal(t, []models.Book{dune, emma}, s.Items())
}

func TestLoad_FailureBeforeFirstLoad(t *testing.T) {
	s := newBooks(&fakeBooks{listErr: errors.New("boom")})
	s.Load(context.Background())

	assert.False(t, s.Loaded())
	assert.Empty(t, s.Items())
}

/*************
 * Create
 *************/

func TestCreate_AppendsServerRecord(t *testing.T) {
	repo := &fakeBooks{created: bookX}
	s := loadedStore(t, repo, dune, emma)

	got, err := s.Create(context.Background(), inputX)
	require.NoError(t, err)
	assert.Equal(t, bookX, got)

	if diff := cmp.Diff([]models.Book{dune, emma, bookX}, s.Items()); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate_InvalidInputIsNotSent(t *testing.T) {
	repo := &fakeBooks{created: bookX}
	s := loadedStore(t, repo, dune)

	_, err := s.Create(context.Background(), models.BookInput{Title: "X"})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Genre")
	assert.Zero(t, repo.creates)
	assert.Equal(t, []models.Book{dune}, s.Items())
}

func TestCreate_ServerErrorLeavesList(t *testing.T) {
	repo := &fakeBooks{createErr: errors.New("500")}
	s := loadedStore(t, repo, dune)

	_, err := s.Create(context.Background(), inputX)
	require.Error(t, err)
	assert.Equal(t, []models.Book{dune}, s.Items())
}

func TestCreate_SameIDIsNotDuplicated(t *testing.T) {
	repo := &fakeBooks{created: bookX}
	s := loadedStore(t, repo, dune, bookX)

	_, err := s.Create(context.Background(), inputX)
	require.NoError(t, err)
	assert.Equal(t, []models.Book{dune, bookX}, s.Items())
}

func TestCreate_StaleLoadInFlight(t *testing.T) {
	tests := []struct {
		name  string
		stale []models.Book
	}{
		{name: "list fetched before create", stale: []models.Book{dune}},
		{name: "list already has the record", stale: []models.Book{dune, bookX}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeBooks{
				list:        tt.stale,
				created:     bookX,
				listGate:    make(chan struct{}),
				listStarted: make(chan struct{}, 1),
			}
			s := newBooks(repo)

			done := make(chan struct{})
			go func() {
				s.Load(context.Background())
				close(done)
			}()
			<-repo.listStarted

			_, err := s.Create(context.Background(), inputX)
			require.NoError(t, err)

			close(repo.listGate)
			<-done

			assert.Equal(t, []models.Book{dune, bookX}, s.Items())
		})
	}
}

func TestLoad_StaleLoadDoesNotResurrectRemoved(t *testing.T) {
	repo := &fakeBooks{list: []models.Book{dune, emma}}
	s := loadedStore(t, repo, dune, emma)

	repo.listGate = make(chan struct{})
	repo.listStarted = make(chan struct{}, 1)

	done := make(chan struct{})
	go func() {
		s.Load(context.Background())
		close(done)
	}()
	<-repo.listStarted

	require.NoError(t, s.Remove(context.Background(), 2))

	close(repo.listGate)
	<-done

	assert.Equal(t, []models.Book{dune}, s.Items())
}

func TestLoad_SupersededLoadIsDiscarded(t *testing.T) {
	repo := &fakeBooks{list: []models.Book{dune}, listGate: make(chan struct{}), listStarted: make(chan struct{}, 1)}
	s := newBooks(repo)

	first := make(chan struct{})
	go func() {
		s.Load(context.Background())
		close(first)
	}()
	<-repo.listStarted

	// the second load sees fresher data and finishes first
	gate := repo.listGate
	repo.mu.Lock()
	repo.list = []models.Book{dune, emma}
	repo.listGate = nil
	repo.listStarted = nil
	repo.mu.Unlock()
	s.Load(context.Background())
	require.Equal(t, []models.Book{dune, emma}, s.Items())

	close(gate)
	<-first
	assert.Equal(t, []models.Book{dune, emma}, s.Items())
}

/*************
 * Update
 *************/

func TestUpdate_MergesOnlyReturnedFields(t *testing.T) {
	repo := &fakeBooks{updateResp: `{"BookId":1,"Quantity":9}`}
	s := loadedStore(t, repo, dune, emma)

	got, err := s.Update(context.Background(), 1, models.BookPatch{Quantity: ptr(9)})
	require.NoError(t, err)

	want := dune
	want.Quantity = 9
	assert.Equal(t, want, got)
	assert.Equal(t, []models.Book{want, emma}, s.Items())
}

func TestUpdate_UnknownIDLeavesList(t *testing.T) {
	repo := &fakeBooks{updateResp: `{"BookId":42,"Title":"Ghost"}`}
	s := loadedStore(t, repo, dune)

	_, err := s.Update(context.Background(), 42, models.BookPatch{Title: ptr("Ghost")})
	require.NoError(t, err)
	assert.Equal(t, []models.Book{dune}, s.Items())
}

func TestUpdate_EmptyPatchRejected(t *testing.T) {
	repo := &fakeBooks{}
	s := loadedStore(t, repo, dune)

	_, err := s.Update(context.Background(), 1, models.BookPatch{})
	require.ErrorIs(t, err, models.ErrNothingToUpdate)
	assert.Zero(t, repo.updates)
}

func TestUpdate_ServerErrorLeavesEntry(t *testing.T) {
	repo := &fakeBooks{updateErr: errors.New("boom")}
	s := loadedStore(t, repo, dune)

	_, err := s.Update(context.Background(), 1, models.BookPatch{Title: ptr("Other")})
	require.Error(t, err)
	assert.Equal(t, []models.Book{dune}, s.Items())
}

/*************
 * Remove / snapshots
 *************/

func TestRemove(t *testing.T) {
	repo := &fakeBooks{}
	s := loadedStore(t, repo, dune, emma)

	require.NoError(t, s.Remove(context.Background(), 1))
	assert.Equal(t, []models.Book{emma}, s.Items())

	require.NoError(t, s.Remove(context.Background(), 99))
	assert.Equal(t, []models.Book{emma}, s.Items())
}

func TestRemove_ServerErrorLeavesList(t *testing.T) {
	repo := &fakeBooks{deleteErr: errors.New("boom")}
	s := loadedStore(t, repo, dune)

	require.Error(t, s.Remove(context.Background(), 1))
	assert.Equal(t, []models.Book{dune}, s.Items())
}

func TestItems_IsSnapshot(t *testing.T) {
	s := loadedStore(t, &fakeBooks{}, dune)

	items := s.Items()
	items[0].Title = "changed"

	got, ok := s.Find(1)
	require.True(t, ok)
	assert.Equal(t, "Dune", got.Title)

	_, ok = s.Find(5)
	assert.False(t, ok)
}
