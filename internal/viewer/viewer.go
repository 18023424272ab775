/*
Package viewer fournit un visualiseur TUI des entrées console capturées.

Le viewer s'abonne au store et maintient des compteurs par niveau et par type
de hook, une fenêtre des entrées récentes et un historique du débit. Les
widgets termui sont construits et mis à jour ici; la boucle d'événements vit
dans cmd/viewer.
*/
package viewer

import (
	"sync"
	"time"

	"github.com/agbruneau/hookorder/internal/config"
	"github.com/agbruneau/hookorder/internal/logstore"
	"github.com/agbruneau/hookorder/pkg/models"
)

// MaxHistorySize borne l'historique du débit affiché dans le graphique.
const MaxHistorySize = 60

// Metrics agrège l'état affiché par le viewer.
type Metrics struct {
	mu             sync.RWMutex
	StartTime      time.Time
	Total          int64
	Merged         int64
	Clears         int64
	ByLevel        map[models.Level]int64
	ByHook         map[models.HookType]int64
	RecentLogs     []models.LogEntry
	EntriesPerTick []float64
	LastUpdateTime time.Time
	LastErrorTime  time.Time
	Uptime         time.Duration
	Paused         bool

	sampledTotal int64
	skipThrough  int64 // entrées déjà comptées par Attach, -1 si aucune
}

// Viewer encapsule l'abonnement au store et les métriques dérivées.
type Viewer struct {
	Metrics *Metrics

	store       *logstore.Store
	maxRecent   int // protégé par Metrics.mu
	maxRow      int // protégé par Metrics.mu
	unsubscribe func()
}

// New crée un viewer pour store. Il faut appeler Attach pour recevoir les entrées.
func New(store *logstore.Store, cfg config.ViewerConfig) *Viewer {
	maxRecent := cfg.MaxRecentLogs
	if maxRecent <= 0 {
		maxRecent = config.ViewerMaxRecentLogs
	}
	maxRow := cfg.MaxRowLength
	if maxRow <= 0 {
		maxRow = config.ViewerMaxRowLength
	}
	v := &Viewer{
		Metrics: &Metrics{
			StartTime:      time.Now(),
			ByLevel:        make(map[models.Level]int64),
			ByHook:         make(map[models.HookType]int64),
			RecentLogs:     make([]models.LogEntry, 0, maxRecent),
			EntriesPerTick: make([]float64, 0, MaxHistorySize),
			skipThrough:    -1,
		},
		store:     store,
		maxRecent: maxRecent,
		maxRow:    maxRow,
	}
	v.Metrics.Paused = store.Paused()
	return v
}

// Attach abonne le viewer au store et reprend les entrées déjà présentes.
// Une entrée ajoutée pendant l'abonnement n'est comptée qu'une fois.
// Un second appel est sans effet.
func (v *Viewer) Attach() {
	if v.unsubscribe != nil {
		return
	}
	m := v.Metrics
	m.mu.Lock()
	defer m.mu.Unlock()

	// Les notifications reçues d'ici la fin attendent le verrou.
	v.unsubscribe = v.store.Subscribe(v.ProcessChange)
	if existing := v.store.Snapshot(); len(existing) > 0 {
		v.recordLocked(existing, false)
		m.skipThrough = existing[len(existing)-1].ID
	}
}

// Detach retire l'abonnement.
func (v *Viewer) Detach() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

// ProcessChange applique une notification du store aux métriques.
func (v *Viewer) ProcessChange(c logstore.Change) {
	switch c.Op {
	case logstore.OpAppend:
		v.record(c.Entries, false)
	case logstore.OpMerge:
		v.record(c.Entries, true)
	case logstore.OpClear:
		v.reset()
	}
}

func (v *Viewer) record(entries []models.LogEntry, merged bool) {
	v.Metrics.mu.Lock()
	defer v.Metrics.mu.Unlock()
	v.recordLocked(entries, merged)
}

func (v *Viewer) recordLocked(entries []models.LogEntry, merged bool) {
	m := v.Metrics
	for _, e := range entries {
		if e.ID <= m.skipThrough {
			continue
		}
		m.Total++
		if merged {
			m.Merged++
		}
		m.ByLevel[e.Level]++
		m.ByHook[e.HookType]++
		if e.Level == models.LevelError {
			m.LastErrorTime = time.Now()
		}
		m.RecentLogs = append(m.RecentLogs, e)
	}
	if over := len(m.RecentLogs) - v.maxRecent; over > 0 {
		m.RecentLogs = append(m.RecentLogs[:0:0], m.RecentLogs[over:]...)
	}
	m.LastUpdateTime = time.Now()
}

func (v *Viewer) reset() {
	m := v.Metrics
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Total = 0
	m.Merged = 0
	m.sampledTotal = 0
	m.skipThrough = -1
	m.Clears++
	clear(m.ByLevel)
	clear(m.ByHook)
	m.RecentLogs = m.RecentLogs[:0:0]
	m.LastErrorTime = time.Time{}
	m.LastUpdateTime = time.Now()
}

// TogglePause inverse la pause de capture et retourne le nouvel état.
func (v *Viewer) TogglePause() bool {
	paused := !v.store.Paused()
	v.SetPaused(paused)
	return paused
}

// SetPaused fixe la pause de capture.
func (v *Viewer) SetPaused(paused bool) {
	v.store.SetPaused(paused)
	v.Metrics.mu.Lock()
	v.Metrics.Paused = paused
	v.Metrics.mu.Unlock()
}

// ApplyConfig applique une configuration rechargée: pause de capture,
// taille de la fenêtre des entrées récentes et longueur des lignes.
func (v *Viewer) ApplyConfig(cfg *config.AppConfig) {
	v.SetPaused(cfg.Capture.StartPaused)

	m := v.Metrics
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := cfg.Viewer.MaxRecentLogs; n > 0 {
		v.maxRecent = n
		if over := len(m.RecentLogs) - n; over > 0 {
			m.RecentLogs = append(m.RecentLogs[:0:0], m.RecentLogs[over:]...)
		}
	}
	if n := cfg.Viewer.MaxRowLength; n > 0 {
		v.maxRow = n
	}
}

// Clear vide le store; les compteurs sont remis à zéro par la notification.
func (v *Viewer) Clear() {
	v.store.Clear()
}

// Sample ajoute à l'historique le nombre d'entrées reçues depuis le dernier
// échantillon et met à jour le temps d'activité.
func (v *Viewer) Sample() {
	m := v.Metrics
	m.mu.Lock()
	defer m.mu.Unlock()

	delta := m.Total - m.sampledTotal
	if delta < 0 {
		delta = 0
	}
	m.sampledTotal = m.Total
	m.EntriesPerTick = append(m.EntriesPerTick, float64(delta))
	if len(m.EntriesPerTick) > MaxHistorySize {
		m.EntriesPerTick = m.EntriesPerTick[1:]
	}
	m.Uptime = time.Since(m.StartTime)
}

// Action est le résultat d'une touche pressée.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionPause
	ActionClear
)

// HandleKey traduit un identifiant d'événement termui en action et l'applique.
func (v *Viewer) HandleKey(id string) Action {
	switch id {
	case "q", "<C-c>":
		return ActionQuit
	case "p", "<Space>":
		v.TogglePause()
		return ActionPause
	case "c":
		v.Clear()
		return ActionClear
	}
	return ActionNone
}
