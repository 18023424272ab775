/*
Package models définit les structures de données partagées du système hookorder.

Ce fichier contient l'entrée de journal capturée par la façade console, ainsi que
les énumérations fermées qui la décrivent (niveau, origine, type de hook).
Ces structures traversent la frontière serveur/client sous forme JSON.
*/
package models

import (
	"strings"
	"time"
)

// Level identifie la fonction de journalisation appelée.
type Level string

const (
	// LevelLog correspond à un appel ordinaire (console.log).
	LevelLog Level = "log"
	// LevelWarn correspond à un avertissement.
	LevelWarn Level = "warn"
	// LevelError correspond à une erreur.
	LevelError Level = "error"
	// LevelInfo correspond à un message informatif.
	LevelInfo Level = "info"
	// LevelDebug correspond à un message de débogage.
	LevelDebug Level = "debug"
)

var levels = []Level{LevelLog, LevelWarn, LevelError, LevelInfo, LevelDebug}

// Levels retourne les cinq niveaux dans leur ordre canonique.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// Valid indique si le niveau fait partie des cinq niveaux standards.
func (l Level) Valid() bool {
	for _, v := range levels {
		if v == l {
			return true
		}
	}
	return false
}

// ParseLevel convertit une chaîne (insensible à la casse) en Level.
// Le second retour vaut false si la chaîne ne correspond à aucun niveau.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	return l, l.Valid()
}

// Source identifie le contexte d'exécution qui a capturé l'entrée.
type Source string

const (
	// SourceNone est utilisé par la variante mono-processus.
	SourceNone Source = ""
	// SourceClient désigne le contexte client, de longue durée.
	SourceClient Source = "client"
	// SourceServer désigne le contexte serveur, limité à une requête.
	SourceServer Source = "server"
)

// Valid indique si la source est connue (la source vide est valide).
func (s Source) Valid() bool {
	return s == SourceNone || s == SourceClient || s == SourceServer
}

// HookType est l'étiquette de classification dérivée du texte formaté.
type HookType string

const (
	HookUseState        HookType = "useState"
	HookUseReducer      HookType = "useReducer"
	HookUseMemo         HookType = "useMemo"
	HookUseCallback     HookType = "useCallback"
	HookUseEffect       HookType = "useEffect"
	HookUseLayoutEffect HookType = "useLayoutEffect"
	HookUseTransition   HookType = "useTransition"
	HookUseOptimistic   HookType = "useOptimistic"
	HookUseContext      HookType = "useContext"
	HookUseRef          HookType = "useRef"
	HookRefCallback     HookType = "ref-callback"
	HookRender          HookType = "render"
	HookOther           HookType = "other"
)

var hookTypes = []HookType{
	HookUseState, HookUseReducer, HookUseMemo, HookUseCallback,
	HookUseEffect, HookUseLayoutEffect, HookUseTransition, HookUseOptimistic,
	HookUseContext, HookUseRef, HookRefCallback, HookRender, HookOther,
}

// HookTypes retourne l'ensemble fermé des types de hook, "other" en dernier.
func HookTypes() []HookType {
	out := make([]HookType, len(hookTypes))
	copy(out, hookTypes)
	return out
}

// LogEntry est un enregistrement capturé par la façade console.
// Une entrée est immuable après sa création; seul l'identifiant est réattribué
// lors de la fusion des entrées serveur dans le magasin client.
type LogEntry struct {
	ID        int64    `json:"id"`                 // Identifiant unique dans le magasin propriétaire.
	Timestamp int64    `json:"timestamp"`          // Horodatage de capture, en millisecondes epoch.
	Level     Level    `json:"level"`              // Fonction de journalisation appelée.
	Args      []any    `json:"args"`               // Arguments bruts de l'appel.
	Formatted string   `json:"formatted"`          // Rendu textuel déterministe des arguments.
	Source    Source   `json:"source,omitempty"`   // Contexte de capture (variante deux processus).
	HookType  HookType `json:"hookType,omitempty"` // Classification heuristique.
}

// Time retourne l'horodatage de l'entrée sous forme de time.Time.
func (e LogEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}
