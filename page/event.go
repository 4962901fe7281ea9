package page

import (
	"strings"

	nt "srql/entity"
)

// Event is a tagged interactive edit. Raw text edits and structured edits are
// distinct types rather than loosely-shaped parameter maps.
type Event interface {
	isEvent()
}

// ChangeDraft buffers raw text without parsing it.
type ChangeDraft struct {
	Text string
}

// Submit promotes the draft to the active query.
type Submit struct{}

// ToggleBuilder opens or closes the structured form; opening re-parses the
// current draft.
type ToggleBuilder struct{}

// FieldChange merges a structured edit into builder state. Keys follow
// builder.Update: entity, time, bucket, agg, series, sort_field, sort_dir,
// limit, filters.N.field/op/value.
type FieldChange struct {
	Changes map[string]string
}

// AddFilter appends an empty filter row.
type AddFilter struct{}

// RemoveFilter deletes one filter row; removing the last reinstates an empty
// default so the form is never rowless.
type RemoveFilter struct {
	Index int
}

// ApplyBuilder stages the builder's derived text as the draft, no navigation.
type ApplyBuilder struct{}

// RunBuilder serializes the builder and navigates to its entity's route.
type RunBuilder struct{}

func (ChangeDraft) isEvent()   {}
func (Submit) isEvent()        {}
func (ToggleBuilder) isEvent() {}
func (FieldChange) isEvent()   {}
func (AddFilter) isEvent()     {}
func (RemoveFilter) isEvent()  {}
func (ApplyBuilder) isEvent()  {}
func (RunBuilder) isEvent()    {}

// Effect tells the host what to do after an event: reload the current list
// in place, or navigate to another entity's route.
type Effect struct {
	Reload bool
	Route  string
}

// HandleEvent applies one interactive edit to the session and reports the
// follow-up effect, if any.
func (pg *Page) HandleEvent(sess Session, event Event) (Session, Effect) {

	switch ev := event.(type) {

	case ChangeDraft:
		sess.Draft = ev.Text
		return sess, Effect{}

	case Submit:
		return pg.submit(sess, sess.Draft)

	case ToggleBuilder:
		return pg.toggleBuilder(sess), Effect{}

	case FieldChange:
		sess.State = pg.builder.Update(sess.State, ev.Changes)
		return pg.restage(sess), Effect{}

	case AddFilter:
		ec := pg.catalog.Entity(sess.State.Entity)
		sess.State.Filters = append(sess.State.Filters, nt.Filter{
			Field: ec.DefaultFilterField,
			Op:    nt.OpEquals,
		})
		sess.State = pg.builder.Normalize(sess.State)
		return pg.restage(sess), Effect{}

	case RemoveFilter:
		if ev.Index >= 0 && ev.Index < len(sess.State.Filters) {
			sess.State.Filters = append(
				sess.State.Filters[:ev.Index], sess.State.Filters[ev.Index+1:]...)
		}
		// Normalize reinstates the empty default row when the list empties.
		sess.State = pg.builder.Normalize(sess.State)
		return pg.restage(sess), Effect{}

	case ApplyBuilder:
		sess.Draft = pg.builder.Build(sess.State)
		sess.BuilderSynced = true
		sess.Unsupported = false
		return sess, Effect{}

	case RunBuilder:
		query := pg.builder.Build(sess.State)
		sess.Draft = query
		sess.BuilderSynced = true
		sess.Unsupported = false
		return pg.submit(sess, query)
	}

	return sess, Effect{}
}

// submit trims and activates a query, falling back to the previous one when
// blank. Same-route queries reload in place; cross-route queries navigate.
func (pg *Page) submit(sess Session, query string) (Session, Effect) {

	query = strings.TrimSpace(query)
	if query == "" {
		query = sess.Query
	}
	sess.Query = query
	sess.Draft = query

	entityID := queryEntity(query)
	if entityID == "" {
		entityID = sess.Entity
	}
	route := pg.catalog.Entity(entityID).Route

	if route == sess.Route {
		return sess, Effect{Reload: true}
	}
	sess.Entity = entityID
	return sess, Effect{Route: route}
}

// toggleBuilder flips the form; opening re-parses the draft so the form
// reflects what will actually run, or falls back to defaults when it can't.
func (pg *Page) toggleBuilder(sess Session) Session {

	sess.BuilderOpen = !sess.BuilderOpen
	if !sess.BuilderOpen {
		return sess
	}

	query := strings.TrimSpace(sess.Draft)
	if query == "" {
		query = sess.Query
	}

	state, err := pg.builder.Parse(query)
	if err != nil {
		sess.State = pg.builder.DefaultState(sess.Entity, sess.State.Limit)
		sess.BuilderSynced = false
		sess.Unsupported = true
		return sess
	}

	sess.State = state
	sess.BuilderSynced = true
	sess.Unsupported = false
	return sess
}

// restage re-derives the draft text after a structured edit when the builder
// is the authoritative view.
func (pg *Page) restage(sess Session) Session {
	if sess.BuilderSynced {
		sess.Draft = pg.builder.Build(sess.State)
	}
	return sess
}
