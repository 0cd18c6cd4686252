package ui

import (
	"time"

	"karolbroda.com/encore/internal/playback"
)

const toastDuration = 2 * time.Second

type toastKind int

const (
	toastInfo toastKind = iota
	toastFailure
)

type toast struct {
	id   int
	text string
	kind toastKind
}

type toastExpiredMsg struct {
	id int
}

// toastFor turns a controller event into the message shown to the user.
// announce is the song whose start should be announced once it plays.
func toastFor(ev playback.EventData, title string, announce string) (string, toastKind, bool) {
	switch ev.Type {
	case playback.EventPlaying:
		if ev.SongID != "" && ev.SongID == announce {
			return "Reproduciendo: " + title, toastInfo, true
		}
	case playback.EventPlaybackFailed:
		return "No se pudo reproducir la canción. Verifica el archivo o la conexión.", toastFailure, true
	case playback.EventResumeFailed:
		return "Error al habilitar el sonido. Intenta reproducir nuevamente.", toastFailure, true
	case playback.EventShuffleChanged:
		return onOff(ev.Flag, "Modo aleatorio activado", "Modo aleatorio desactivado"), toastInfo, true
	case playback.EventRepeatChanged:
		return onOff(ev.Flag, "Repetición activada", "Repetición desactivada"), toastInfo, true
	case playback.EventFavoriteChanged:
		return onOff(ev.Flag, "Añadido a favoritos", "Eliminado de favoritos"), toastInfo, true
	}
	return "", toastInfo, false
}

func onOff(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}
