package server

import "html/template"

const pageTemplates = `
{{define "login.html"}}<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"><title>encore · login</title></head>
<body>
<h1>Ado Fan Site</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/login">
  <input name="username" placeholder="usuario" value="{{.Username}}" autofocus>
  <input name="password" type="password" placeholder="contraseña">
  <button type="submit">Entrar</button>
</form>
</body>
</html>{{end}}

{{define "index.html"}}<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"><title>encore</title></head>
<body>
<header>
  <img src="{{.AlbumArt}}" alt="Ado" width="96">
  <span>{{.User}}</span> · <a href="/logout">salir</a>
</header>
<section id="top-songs">
<h2>Top</h2>
<ol>{{range .Top}}<li><a href="#song-{{.ID}}">{{.Title}}</a></li>{{end}}</ol>
</section>
<section id="songs">
{{range .Songs}}
<article id="song-{{.ID}}" data-song-id="{{.ID}}">
  <h3>{{.Title}}</h3>
  <p class="artist">{{.Artist}}</p>
  <p class="info">{{.Info}}</p>
  <audio controls preload="none" src="{{audioPath .}}"></audio>
</article>
{{end}}
</section>
</body>
</html>{{end}}
`

type loginPage struct {
	Error    string
	Username string
}

type indexPage struct {
	User     string
	AlbumArt string
	Songs    any
	Top      any
}

func parseTemplates(funcs template.FuncMap) *template.Template {
	return template.Must(template.New("pages").Funcs(funcs).Parse(pageTemplates))
}
