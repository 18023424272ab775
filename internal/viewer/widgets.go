package viewer

import (
	"fmt"
	"time"

	"github.com/agbruneau/hookorder/internal/config"
	"github.com/agbruneau/hookorder/pkg/models"
	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

// HealthStatus définit les niveaux de santé des indicateurs.
type HealthStatus int

const (
	HealthGood     HealthStatus = iota // Aucun problème, affiché en vert.
	HealthWarning                      // Avertissements, affiché en jaune.
	HealthCritical                     // Erreurs, affiché en rouge.
)

// ErrorRecentWindow: une erreur plus ancienne n'est plus signalée comme active.
const ErrorRecentWindow = time.Minute

// Widgets regroupe les éléments de l'écran.
type Widgets struct {
	Summary   *widgets.Table
	Hooks     *widgets.Table
	Logs      *widgets.List
	RateChart *widgets.Plot
	Help      *widgets.Paragraph
}

// CreateWidgets initialise tous les widgets.
func CreateWidgets() *Widgets {
	return &Widgets{
		Summary:   CreateSummaryTable(),
		Hooks:     CreateHookTable(),
		Logs:      CreateLogList(),
		RateChart: CreateRateChart(),
		Help:      CreateHelp(),
	}
}

// Layout place les widgets pour un terminal de la taille donnée.
func (w *Widgets) Layout(width, height int) {
	mid := width / 2
	w.Summary.SetRect(0, 0, mid, 10)
	w.Hooks.SetRect(mid, 0, width, 16)
	w.RateChart.SetRect(0, 10, mid, 16)
	w.Logs.SetRect(0, 16, width, height-3)
	w.Help.SetRect(0, height-3, width, height)
}

// Drawables retourne les widgets dans l'ordre de rendu.
func (w *Widgets) Drawables() []ui.Drawable {
	return []ui.Drawable{w.Summary, w.Hooks, w.RateChart, w.Logs, w.Help}
}

// CreateSummaryTable initialise le tableau des compteurs par niveau.
func CreateSummaryTable() *widgets.Table {
	table := widgets.NewTable()
	table.Title = "Capture"
	table.Rows = summaryRows(&Metrics{ByLevel: map[models.Level]int64{}})
	table.TextStyle = ui.NewStyle(ui.ColorWhite)
	table.RowStyles[0] = ui.NewStyle(ui.ColorYellow, ui.ColorClear, ui.ModifierBold)
	table.ColumnWidths = []int{20, 20}
	return table
}

// CreateHookTable initialise le tableau des compteurs par hook.
func CreateHookTable() *widgets.Table {
	table := widgets.NewTable()
	table.Title = "Hooks"
	table.Rows = hookRows(map[models.HookType]int64{})
	table.TextStyle = ui.NewStyle(ui.ColorWhite)
	table.RowStyles[0] = ui.NewStyle(ui.ColorYellow, ui.ColorClear, ui.ModifierBold)
	return table
}

// CreateLogList initialise la liste des entrées récentes.
func CreateLogList() *widgets.List {
	list := widgets.NewList()
	list.Title = "Entrées récentes"
	list.Rows = []string{"En attente de logs..."}
	list.TextStyle = ui.NewStyle(ui.ColorWhite)
	list.SelectedRowStyle = ui.NewStyle(ui.ColorBlack, ui.ColorWhite)
	list.WrapText = false
	return list
}

// CreateRateChart initialise le graphique du nombre d'entrées par rafraîchissement.
func CreateRateChart() *widgets.Plot {
	plot := widgets.NewPlot()
	plot.Title = "Entrées / rafraîchissement"
	plot.Data = [][]float64{{0, 0}}
	plot.AxesColor = ui.ColorWhite
	plot.LineColors[0] = ui.ColorGreen
	plot.Marker = widgets.MarkerDot
	return plot
}

// CreateHelp initialise la barre d'aide.
func CreateHelp() *widgets.Paragraph {
	p := widgets.NewParagraph()
	p.Text = "[p] pause/reprise   [c] vider   [q] quitter"
	p.Border = true
	return p
}

// GetErrorStatus évalue les erreurs et avertissements capturés.
func GetErrorStatus(errors, warnings int64, lastErrorTime time.Time) (HealthStatus, string, ui.Color) {
	if errors > 0 && time.Since(lastErrorTime) <= ErrorRecentWindow {
		return HealthCritical, "● ERREURS", ui.ColorRed
	}
	if errors > 0 || warnings > 0 {
		return HealthWarning, "● AVERTISSEMENTS", ui.ColorYellow
	}
	return HealthGood, "● AUCUNE", ui.ColorGreen
}

// formatUptime formate le temps d'activité en chaîne lisible.
func formatUptime(uptime time.Duration) string {
	if uptime.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", uptime.Hours())
	} else if uptime.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", uptime.Minutes())
	}
	return fmt.Sprintf("%.0fs", uptime.Seconds())
}

func summaryRows(m *Metrics) [][]string {
	state := "● CAPTURE"
	if m.Paused {
		state = "⏸ PAUSE"
	}
	_, errText, _ := GetErrorStatus(m.ByLevel[models.LevelError], m.ByLevel[models.LevelWarn], m.LastErrorTime)
	rows := [][]string{
		{"Métrique", "Valeur"},
		{"État", state},
		{"Entrées", fmt.Sprintf("%d (%d fusionnées)", m.Total, m.Merged)},
	}
	for _, level := range models.Levels() {
		rows = append(rows, []string{"  " + string(level), fmt.Sprintf("%d", m.ByLevel[level])})
	}
	rows = append(rows,
		[]string{"Problèmes", errText},
		[]string{"Activité", formatUptime(m.Uptime)},
	)
	return rows
}

func hookRows(byHook map[models.HookType]int64) [][]string {
	rows := [][]string{{"Hook", "Entrées"}}
	for _, h := range models.HookTypes() {
		rows = append(rows, []string{string(h), fmt.Sprintf("%d", byHook[h])})
	}
	return rows
}

// UpdateSummaryTable met à jour le tableau des compteurs.
func UpdateSummaryTable(table *widgets.Table, m *Metrics) {
	table.Rows = summaryRows(m)
	_, _, errColor := GetErrorStatus(m.ByLevel[models.LevelError], m.ByLevel[models.LevelWarn], m.LastErrorTime)

	table.RowStyles = make(map[int]ui.Style)
	table.RowStyles[0] = ui.NewStyle(ui.ColorYellow, ui.ColorClear, ui.ModifierBold)
	if m.Paused {
		table.RowStyles[1] = ui.NewStyle(ui.ColorYellow, ui.ColorClear, ui.ModifierBold)
	} else {
		table.RowStyles[1] = ui.NewStyle(ui.ColorGreen, ui.ColorClear, ui.ModifierBold)
	}
	table.RowStyles[len(table.Rows)-2] = ui.NewStyle(errColor, ui.ColorClear)
}

// UpdateHookTable met à jour le tableau des hooks.
func UpdateHookTable(table *widgets.Table, m *Metrics) {
	table.Rows = hookRows(m.ByHook)
}

var levelIcons = map[models.Level]string{
	models.LevelLog:   "⚪",
	models.LevelInfo:  "🔵",
	models.LevelDebug: "⚫",
	models.LevelWarn:  "🟡",
	models.LevelError: "🔴",
}

// formatLogRow formate une entrée pour l'affichage, tronquée à maxLen runes.
func formatLogRow(e models.LogEntry, maxLen int) string {
	icon, ok := levelIcons[e.Level]
	if !ok {
		icon = "⚪"
	}
	source := ""
	if e.Source != models.SourceNone {
		source = " [" + string(e.Source) + "]"
	}
	row := fmt.Sprintf("%s [%s] #%d%s %s", icon, e.Time().Format("15:04:05.000"), e.ID, source, e.Formatted)
	return truncate(row, maxLen)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	suffix := []rune(config.ViewerTruncateSuffix)
	if maxLen <= len(suffix) {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-len(suffix)]) + config.ViewerTruncateSuffix
}

// UpdateLogList met à jour la liste, la plus récente en premier.
func UpdateLogList(list *widgets.List, logs []models.LogEntry, maxLen int) {
	rows := make([]string, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		rows = append(rows, formatLogRow(logs[i], maxLen))
	}
	if len(rows) == 0 {
		rows = []string{"En attente de logs..."}
	}
	list.Rows = rows
}

// UpdateRateChart met à jour le graphique. termui exige au moins deux points.
func UpdateRateChart(chart *widgets.Plot, history []float64) {
	switch len(history) {
	case 0:
		chart.Data = [][]float64{{0, 0}}
	case 1:
		chart.Data = [][]float64{{0, history[0]}}
	default:
		chart.Data = [][]float64{append([]float64(nil), history...)}
	}
}

// UpdateUI rafraîchit tous les widgets avec les dernières métriques.
func (v *Viewer) UpdateUI(w *Widgets) {
	v.Metrics.mu.RLock()
	defer v.Metrics.mu.RUnlock()

	UpdateSummaryTable(w.Summary, v.Metrics)
	UpdateHookTable(w.Hooks, v.Metrics)
	UpdateLogList(w.Logs, v.Metrics.RecentLogs, v.maxRow)
	UpdateRateChart(w.RateChart, v.Metrics.EntriesPerTick)
}
