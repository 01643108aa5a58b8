package cli

import (
	"context"
	"fmt"
	"maps"
	"strconv"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/client/store"
)

// entity is the command surface shared by every collection.
type entity interface {
	List(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

// field is one prompt of an add form, keyed by JSON field name.
type field struct {
	name  string
	label string
}

// resource binds one store to its form and table.
type resource[T store.Entity, In, P any] struct {
	app   *App
	name  string
	store *store.Store[T, In, P]
	form  []field

	defaults func(ctx context.Context) map[string]string
	render   func(ctx context.Context, items []T)
	changed  func(ctx context.Context)
}

func (a *App) newEntities() map[string]entity {
	authors := &resource[models.Author, models.AuthorInput, models.AuthorPatch]{
		app:   a,
		name:  "author",
		store: a.authors,
		form:  []field{{"Name", "Name"}, {"Bio", "Bio"}},
		render: func(_ context.Context, items []models.Author) {
			renderAuthors(a.out, items)
		},
	}
	books := &resource[models.Book, models.BookInput, models.BookPatch]{
		app:   a,
		name:  "book",
		store: a.books,
		form: []field{
			{"Title", "Title"}, {"author", "Author ID"}, {"Genre", "Genre"},
			{"ISBN", "ISBN"}, {"Quantity", "Quantity"},
		},
		render: func(ctx context.Context, items []models.Book) {
			renderBooks(a.out, items, a.authorNames(ctx))
		},
	}
	students := &resource[models.Student, models.StudentInput, models.StudentPatch]{
		app:   a,
		name:  "student",
		store: a.students,
		form: []field{
			{"name", "Name"}, {"email", "Email"},
			{"contact_number", "Contact number"}, {"department", "Department"},
		},
		render: func(_ context.Context, items []models.Student) {
			renderStudents(a.out, items)
		},
	}
	transactions := &resource[models.Transaction, models.TransactionInput, models.TransactionPatch]{
		app:   a,
		name:  "transaction",
		store: a.transactions,
		form: []field{
			{"student", "Student ID"}, {"book", "Book ID"},
			{"transaction_type", "Type (borrow/return)"},
			{"borrowed_date", "Borrowed date (YYYY-MM-DD)"},
			{"due_date", "Due date (YYYY-MM-DD)"},
		},
		defaults: a.issueDefaults,
		render: func(ctx context.Context, items []models.Transaction) {
			renderTransactions(a.out, items, a.studentNames(ctx), a.bookTitles(ctx))
		},
		// stock is kept by the server, so book quantities are re-read
		changed: func(ctx context.Context) { a.books.Load(ctx) },
	}

	return map[string]entity{
		"author":      authors,
		"book":        books,
		"student":     students,
		"transaction": transactions,
	}
}

// issueDefaults pre-fills the issuing form: a borrow, dated today, by the
// logged-in user.
func (a *App) issueDefaults(ctx context.Context) map[string]string {
	in := models.NewIssue(a.now())
	out := map[string]string{
		"transaction_type": string(in.Type),
		"borrowed_date":    in.BorrowedDate,
	}
	if u, ok := a.session.Current(ctx); ok {
		out["user"] = strconv.FormatInt(u.ID, 10)
	}
	return out
}

func (r *resource[T, In, P]) List(ctx context.Context, _ []string) error {
	r.store.Load(ctx)
	if !r.store.Loaded() {
		return errNotLoaded(r.name + "s")
	}
	r.render(ctx, r.store.Items())
	return nil
}

// Add creates a record from name=value args, or from the form when no args
// are given.
func (r *resource[T, In, P]) Add(ctx context.Context, args []string) error {
	fields := map[string]string{}
	if r.defaults != nil {
		maps.Copy(fields, r.defaults(ctx))
	}

	if len(args) > 0 {
		given, err := models.ParseFields(args)
		if err != nil {
			return err
		}
		maps.Copy(fields, given)
	} else {
		for _, f := range r.form {
			v, err := GetWithDefault(r.app.reader, f.label, fields[f.name], r.app.out)
			if err != nil {
				return err
			}
			if v == "" {
				delete(fields, f.name)
				continue
			}
			fields[f.name] = v
		}
	}

	var in In
	if err := models.Decode(fields, &in); err != nil {
		return err
	}
	item, err := r.store.Create(ctx, in)
	if err != nil {
		return err
	}

	success(r.app.out, "%s %d created.", r.name, item.ID())
	r.render(ctx, []T{item})
	r.afterChange(ctx)
	return nil
}

// Update applies "<id> name=value..."; without fields they are prompted for.
func (r *resource[T, In, P]) Update(ctx context.Context, args []string) error {
	id, rest, err := r.id(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		if rest, err = GetFields(r.app.reader, r.app.out); err != nil {
			return err
		}
	}

	fields, err := models.ParseFields(rest)
	if err != nil {
		return err
	}
	var patch P
	if err := models.Decode(fields, &patch); err != nil {
		return err
	}

	if !r.store.Loaded() {
		r.store.Load(ctx)
	}
	item, err := r.store.Update(ctx, id, patch)
	if err != nil {
		return err
	}

	success(r.app.out, "%s %d updated.", r.name, id)
	if current, ok := r.store.Find(id); ok {
		item = current
	}
	r.render(ctx, []T{item})
	r.afterChange(ctx)
	return nil
}

func (r *resource[T, In, P]) Delete(ctx context.Context, args []string) error {
	id, _, err := r.id(args)
	if err != nil {
		return err
	}
	if err := r.store.Remove(ctx, id); err != nil {
		return err
	}
	success(r.app.out, "%s %d deleted.", r.name, id)
	r.afterChange(ctx)
	return nil
}

func (r *resource[T, In, P]) afterChange(ctx context.Context) {
	if r.changed != nil {
		r.changed(ctx)
	}
}

// id takes the record id from the first arg or asks for it.
func (r *resource[T, In, P]) id(args []string) (int64, []string, error) {
	var raw string
	if len(args) > 0 {
		raw, args = args[0], args[1:]
	} else {
		v, err := GetSimpleText(r.app.reader, fmt.Sprintf("Enter %s id", r.name), r.app.out)
		if err != nil {
			return 0, nil, err
		}
		raw = v
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, nil, fmt.Errorf("invalid %s id %q", r.name, raw)
	}
	return id, args, nil
}

func (a *App) authorNames(ctx context.Context) names {
	if !a.authors.Loaded() {
		a.authors.Load(ctx)
	}
	out := names{}
	for _, au := range a.authors.Items() {
		out[au.AuthorID] = au.Name
	}
	return out
}

func (a *App) studentNames(ctx context.Context) names {
	if !a.students.Loaded() {
		a.students.Load(ctx)
	}
	out := names{}
	for _, s := range a.students.Items() {
		out[s.StudentID] = s.Name
	}
	return out
}

func (a *App) bookTitles(ctx context.Context) names {
	if !a.books.Loaded() {
		a.books.Load(ctx)
	}
	out := names{}
	for _, b := range a.books.Items() {
		out[b.BookID] = b.Title
	}
	return out
}
