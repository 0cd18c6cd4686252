package ui

import "karolbroda.com/encore/internal/catalog"

type menuAction int

const (
	menuPlay menuAction = iota
	menuFavorite
	menuAddToPlaylist
	menuDownload
	menuCount
)

func (a menuAction) Label(favorite bool) string {
	switch a {
	case menuPlay:
		return "Reproducir"
	case menuFavorite:
		if favorite {
			return "Quitar de favoritos"
		}
		return "Añadir a favoritos"
	case menuAddToPlaylist:
		return "Agregar a playlist"
	case menuDownload:
		return "Descargar"
	}
	return ""
}

const (
	playlistNotImplemented = "Función de agregar a playlist no implementada"
	downloadNotImplemented = "Función de descarga no implementada"
)

type contextMenu struct {
	song     catalog.Song
	favorite bool
	cursor   menuAction
}

func (c *contextMenu) up() {
	c.cursor = (c.cursor - 1 + menuCount) % menuCount
}

func (c *contextMenu) down() {
	c.cursor = (c.cursor + 1) % menuCount
}
