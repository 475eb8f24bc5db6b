// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/lyrictype/internal/model"
	"github.com/verte-zerg/lyrictype/internal/normalize"
	"github.com/verte-zerg/lyrictype/internal/queue"
	"github.com/verte-zerg/lyrictype/internal/recent"
	"github.com/verte-zerg/lyrictype/internal/search"
	"github.com/verte-zerg/lyrictype/internal/session"
	statsPkg "github.com/verte-zerg/lyrictype/internal/stats"
	"github.com/verte-zerg/lyrictype/internal/timing"
)

const (
	tickInterval  = 500 * time.Millisecond
	upcomingShown = 3
)

type screen int

const (
	screenSearch screen = iota
	screenTyping
)

// ResultStore persists finished tests and recent artists.
type ResultStore interface {
	InsertResult(ctx context.Context, r model.TestResult) error
	ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.TestResult, error)
	SaveRecentArtists(ctx context.Context, artists []model.RecentArtist) error
}

// Options wires the model to its collaborators.
type Options struct {
	Config  model.Config
	Store   ResultStore
	Manager *queue.Manager
	Finder  search.Finder
	Recent  *recent.Cache
	Clock   timing.Clock
	// Artist, when set, is loaded on start instead of showing search.
	Artist      *model.ArtistRef
	SearchDelay time.Duration
}

type searchMsg search.Result

type artistMsg struct {
	artist model.ArtistRef
	song   model.SongRecord
	err    error
}

type songMsg struct {
	song model.SongRecord
	ok   bool
	err  error
}

type imageMsg struct {
	artistID string
	info     model.ArtistInfo
	ok       bool
}

type tickMsg time.Time

// Model implements the Bubble Tea typing UI.
type Model struct {
	config  model.Config
	store   ResultStore
	manager *queue.Manager
	recent  *recent.Cache
	clock   timing.Clock
	pending *model.ArtistRef

	searcher      *search.Searcher
	searchResults chan search.Result

	keys  keyMap
	help  help.Model
	input textinput.Model

	screen screen
	width  int
	height int

	artists   []model.ArtistRef
	selected  int
	searchErr string

	loading bool
	status  string
	errMsg  string
	ticking bool

	opts    normalize.Options
	song    model.SongRecord
	session *session.Session
	saved   bool

	lastWPM float64
	lastAcc float64
	hasLast bool

	allWPM       float64
	allAcc       float64
	allTyped     int
	allIncorrect int
	allActiveMs  int64
}

// NewModel constructs a typing TUI model.
func NewModel(opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = timing.System()
	}
	if opts.Recent == nil {
		opts.Recent = recent.New(nil)
	}
	m := &Model{
		config:        opts.Config,
		store:         opts.Store,
		manager:       opts.Manager,
		recent:        opts.Recent,
		clock:         opts.Clock,
		pending:       opts.Artist,
		searchResults: make(chan search.Result, 8),
		keys:          defaultKeyMap(),
		help:          help.New(),
		opts: normalize.Options{
			Capitalization: opts.Config.Capitalization,
			Punctuation:    opts.Config.Punctuation,
		},
	}
	m.help.ShortSeparator = "  "
	m.input = textinput.New()
	m.input.Prompt = "Artist: "
	m.input.Placeholder = "start typing an artist name"
	m.input.Focus()
	if opts.Finder != nil {
		m.searcher = search.New(opts.Finder, opts.Clock, opts.SearchDelay, opts.Config.SearchLimit, m.deliverSearch)
	}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitForSearch()}
	if m.pending != nil {
		artist := *m.pending
		m.pending = nil
		m.loading = true
		m.status = "Loading " + artistLabel(artist) + "..."
		cmds = append(cmds, m.loadArtistCmd(artist))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-len(m.input.Prompt)-2)
		m.help.Width = msg.Width
		return m, nil
	case tea.BlurMsg:
		if m.session != nil && m.session.State() == session.Running {
			if m.session.Dispatch(session.Pause{Paused: true}) == session.Accepted {
				m.status = "Paused"
			}
		}
		return m, nil
	case tea.FocusMsg:
		return m, nil
	case searchMsg:
		m.applySearch(search.Result(msg))
		return m, m.waitForSearch()
	case artistMsg:
		return m.applyArtist(msg)
	case songMsg:
		return m.applySong(msg)
	case imageMsg:
		if msg.ok && m.manager != nil && msg.artistID == m.manager.Artist().ID {
			m.saveRecent()
		}
		return m, nil
	case tickMsg:
		if m.screen != screenTyping {
			m.ticking = false
			return m, nil
		}
		return m, tickCmd()
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.shutdown()
			return m, tea.Quit
		}
		if m.screen == screenTyping {
			return m.updateTyping(msg)
		}
		return m.updateSearch(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.screen == screenTyping {
		return m.viewTyping()
	}
	return m.viewSearch()
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.input.Value() == "" {
			m.shutdown()
			return m, tea.Quit
		}
		m.input.SetValue("")
		m.onQueryChanged()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.choices())-1 {
			m.selected++
		}
		return m, nil
	case key.Matches(msg, m.keys.Select):
		choices := m.choices()
		if m.loading || len(choices) == 0 {
			return m, nil
		}
		artist := choices[min(m.selected, len(choices)-1)]
		m.loading = true
		m.errMsg = ""
		m.status = "Loading " + artistLabel(artist) + "..."
		return m, m.loadArtistCmd(artist)
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.onQueryChanged()
	}
	return m, cmd
}

func (m *Model) onQueryChanged() {
	m.selected = 0
	m.searchErr = ""
	if strings.TrimSpace(m.input.Value()) == "" {
		m.artists = nil
	}
	if m.searcher != nil {
		m.searcher.Update(m.input.Value())
	}
}

func (m *Model) applySearch(res search.Result) {
	if res.Query != strings.TrimSpace(m.input.Value()) {
		return
	}
	m.selected = 0
	if res.Err != nil {
		m.searchErr = "Search failed: " + res.Err.Error()
		m.artists = nil
		return
	}
	m.searchErr = ""
	m.artists = res.Artists
}

// choices lists search results, or recent artists while the query is empty.
func (m *Model) choices() []model.ArtistRef {
	if strings.TrimSpace(m.input.Value()) != "" {
		return m.artists
	}
	recents := m.recent.List()
	out := make([]model.ArtistRef, len(recents))
	for i, r := range recents {
		out[i] = model.ArtistRef{ID: r.ID, Name: r.Name}
	}
	return out
}

func (m *Model) applyArtist(msg artistMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.status = ""
	if msg.err != nil {
		if errors.Is(msg.err, queue.ErrSuperseded) {
			return m, nil
		}
		m.errMsg = msg.err.Error()
		m.screen = screenSearch
		return m, nil
	}
	m.errMsg = ""
	m.startSong(msg.song)
	m.screen = screenTyping
	m.saveRecent()
	cmds := []tea.Cmd{m.startTicking()}
	if entry, ok := m.recent.Get(msg.artist.ID); !ok || entry.ImageURL == "" {
		cmds = append(cmds, m.refreshImageCmd(msg.artist.ID))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) applySong(msg songMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.status = ""
	switch {
	case msg.err != nil:
		m.errMsg = msg.err.Error()
	case !msg.ok:
		m.status = "No more songs for " + artistLabel(m.manager.Artist())
	default:
		m.errMsg = ""
		m.startSong(msg.song)
	}
	return m, nil
}

func (m *Model) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = screenSearch
		m.session = nil
		m.status = ""
		m.input.Focus()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.nextCmd()
	case key.Matches(msg, m.keys.Previous):
		if song, ok := m.manager.Previous(); ok {
			m.startSong(song)
		}
		return m, nil
	case key.Matches(msg, m.keys.Restart):
		if m.session == nil {
			return m, nil
		}
		m.session.Dispatch(session.Restart{})
		m.saved = false
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.ToggleCaps):
		m.setOptions(normalize.Options{Capitalization: !m.opts.Capitalization, Punctuation: m.opts.Punctuation})
		return m, nil
	case key.Matches(msg, m.keys.TogglePunct):
		m.setOptions(normalize.Options{Capitalization: m.opts.Capitalization, Punctuation: !m.opts.Punctuation})
		return m, nil
	}
	if m.session == nil {
		return m, nil
	}
	if m.session.State() == session.Completed {
		if key.Matches(msg, m.keys.Select) {
			return m, m.nextCmd()
		}
		return m, nil
	}

	current := []rune(m.session.Input())
	var candidate string
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		if len(current) == 0 {
			return m, nil
		}
		candidate = string(current[:len(current)-1])
	case tea.KeySpace:
		candidate = string(current) + " "
	case tea.KeyEnter:
		candidate = string(current) + "\n"
	case tea.KeyRunes:
		candidate = string(current) + string(msg.Runes)
	default:
		return m, nil
	}
	m.handleKeystroke(candidate)
	return m, nil
}

func (m *Model) handleKeystroke(candidate string) {
	wasPaused := m.session.State() == session.Paused
	switch m.session.Dispatch(session.Keystroke{Value: candidate}) {
	case session.Finished, session.Escaped:
		m.recordResult()
	case session.Accepted:
		if wasPaused {
			m.status = ""
		}
	}
}

func (m *Model) setOptions(opts normalize.Options) {
	m.opts = opts
	if m.session != nil && m.session.Dispatch(session.Toggle{Options: opts}) == session.Accepted {
		m.saved = false
		m.status = ""
	}
}

func (m *Model) startSong(song model.SongRecord) {
	m.song = song
	m.session = session.New(song.Lyrics, m.opts, m.clock)
	m.saved = false
	m.status = ""
}

func (m *Model) recordResult() {
	res, ok := m.session.Result()
	if !ok || m.saved {
		return
	}
	m.saved = true
	if res.CharactersTyped == 0 {
		m.status = "Test ended with nothing typed"
		return
	}
	artist := m.song.Artist
	if artist == "" {
		artist = m.song.PrimaryArtist
	}
	tr := model.TestResult{
		SessionID:       m.session.ID(),
		StartedAt:       res.StartedAt,
		EndedAt:         res.EndedAt,
		ArtistID:        m.song.ArtistID,
		Artist:          artist,
		Title:           m.song.Title,
		SongID:          m.song.SongID,
		Capitalization:  m.opts.Capitalization,
		Punctuation:     m.opts.Punctuation,
		CharactersTyped: res.CharactersTyped,
		Incorrect:       res.Incorrect,
		RawWPM:          res.RawWPM,
		WPM:             res.WPM,
		Accuracy:        res.Accuracy,
		ActiveMs:        res.Active.Milliseconds(),
	}
	if m.store != nil {
		if err := m.store.InsertResult(context.Background(), tr); err != nil {
			log.Printf("failed to save result: %v", err)
		}
	}
	m.lastWPM = tr.WPM
	m.lastAcc = tr.Accuracy
	m.hasLast = true
	m.allTyped += tr.CharactersTyped
	m.allIncorrect += tr.Incorrect
	m.allActiveMs += tr.ActiveMs
	m.recomputeAllTime()
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	results, err := m.store.ListResults(context.Background(), model.StatsConfig{})
	if err != nil {
		log.Printf("failed to load result stats: %v", err)
		return
	}
	if len(results) == 0 {
		return
	}
	last := results[len(results)-1]
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true
	for _, r := range results {
		m.allTyped += r.CharactersTyped
		m.allIncorrect += r.Incorrect
		m.allActiveMs += r.ActiveMs
	}
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	metrics := statsPkg.Score(m.allTyped, m.allIncorrect, m.allActiveMs)
	m.allWPM = metrics.WPM
	m.allAcc = metrics.Accuracy
}

func (m *Model) saveRecent() {
	if m.store == nil {
		return
	}
	if err := m.store.SaveRecentArtists(context.Background(), m.recent.List()); err != nil {
		log.Printf("failed to save recent artists: %v", err)
	}
}

func (m *Model) shutdown() {
	if m.searcher != nil {
		m.searcher.Stop()
	}
}

// deliverSearch runs on the searcher's goroutine, except for blank-query
// clears, which arrive from Update itself and must never block it.
func (m *Model) deliverSearch(res search.Result) {
	if res.Query == "" {
		select {
		case m.searchResults <- res:
		default:
		}
		return
	}
	m.searchResults <- res
}

func (m *Model) waitForSearch() tea.Cmd {
	ch := m.searchResults
	return func() tea.Msg {
		return searchMsg(<-ch)
	}
}

func (m *Model) loadArtistCmd(artist model.ArtistRef) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		song, err := mgr.InitializeWithArtist(context.Background(), artist)
		return artistMsg{artist: artist, song: song, err: err}
	}
}

func (m *Model) nextCmd() tea.Cmd {
	if m.loading || m.manager == nil {
		return nil
	}
	m.loading = true
	m.status = "Loading next song..."
	mgr := m.manager
	return func() tea.Msg {
		song, ok, err := mgr.Next(context.Background())
		return songMsg{song: song, ok: ok, err: err}
	}
}

func (m *Model) refreshImageCmd(artistID string) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		info, ok := mgr.RefreshArtistImage(context.Background())
		return imageMsg{artistID: artistID, info: info, ok: ok}
	}
}

// startTicking begins the live WPM refresh unless a tick is already due.
func (m *Model) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func artistLabel(a model.ArtistRef) string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}
