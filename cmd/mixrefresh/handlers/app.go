package handlers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/henryhillproductions-afk/mixrefresh-backend/common/bootstrap"
)

// AppHandler serves the embedded web UI and the PWA manifest
type AppHandler struct {
	components *bootstrap.Components
}

// NewAppHandler creates a new app handler
func NewAppHandler(components *bootstrap.Components) *AppHandler {
	return &AppHandler{
		components: components,
	}
}

// pageData carries the bindings for the embedded HTML pages
type pageData struct {
	AppName   string
	UserID    string
	ProjectID string
}

// Player serves a minimal HTML player for the latest mix of a scope
// GET /player?user_id&project_id
func (h *AppHandler) Player(c echo.Context) error {
	data := pageData{
		AppName:   h.components.Config.App.Name,
		UserID:    c.QueryParam("user_id"),
		ProjectID: c.QueryParam("project_id"),
	}
	if data.UserID == "" {
		data.UserID = h.components.Config.App.DefaultUserID
	}
	if data.ProjectID == "" {
		data.ProjectID = h.components.Config.App.DefaultProjectID
	}

	return renderPage(c, playerTemplate, data)
}

// App serves the installable PWA shell
// GET /app
func (h *AppHandler) App(c echo.Context) error {
	data := pageData{
		AppName:   h.components.Config.App.Name,
		UserID:    h.components.Config.App.AppUserID,
		ProjectID: h.components.Config.App.AppProjectID,
	}

	return renderPage(c, appTemplate, data)
}

// Manifest serves the PWA web manifest
// GET /manifest.webmanifest
func (h *AppHandler) Manifest(c echo.Context) error {
	appName := h.components.Config.App.Name

	content, err := json.Marshal(map[string]interface{}{
		"name":             appName,
		"short_name":       appName,
		"start_url":        "/app",
		"display":          "standalone",
		"background_color": "#0b0b0f",
		"theme_color":      "#0b0b0f",
		"icons":            []interface{}{},
	})
	if err != nil {
		h.components.Logger.Error("failed to build manifest", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build manifest")
	}

	return c.Blob(http.StatusOK, "application/manifest+json", content)
}

// Root redirects to the app shell
// GET /
func (h *AppHandler) Root(c echo.Context) error {
	return c.Redirect(http.StatusTemporaryRedirect, "/app")
}

// renderPage executes an HTML template and writes the result
func renderPage(c echo.Context, tmpl *template.Template, data pageData) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render page")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

var playerTemplate = template.Must(template.New("player").Parse(`<html>
<head><title>Mix Player</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 50px;">
    <h2>Latest Mix for {{.UserID}} / {{.ProjectID}}</h2>
    <audio controls style="width:90%">
      <source src="/latest?user_id={{.UserID}}&project_id={{.ProjectID}}" type="audio/wav">
    </audio>
</body>
</html>
`))

var appTemplate = template.Must(template.New("app").Parse(`<!doctype html>
<html lang="de">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <meta name="apple-mobile-web-app-capable" content="yes">
  <meta name="apple-mobile-web-app-status-bar-style" content="black-translucent">
  <meta name="apple-mobile-web-app-title" content="{{.AppName}}">
  <link rel="manifest" href="/manifest.webmanifest">
  <title>{{.AppName}}</title>

  <style>
    body {
      font-family: -apple-system, system-ui, Segoe UI, Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 24px;
      display: flex;
      align-items: center;
      justify-content: center;
      min-height: 100vh;
      background: #0b0b0f;
      color: #fff;
    }

    .card {
      width: 100%;
      max-width: 520px;
      background: #151521;
      border-radius: 18px;
      padding: 20px;
      box-shadow: 0 10px 30px rgba(0,0,0,.35);
    }

    h1 {
      margin: 0 0 6px 0;
      font-size: 22px;
    }

    .meta {
      opacity: .75;
      font-size: 13px;
      margin-bottom: 14px;
      white-space: pre-wrap;
      word-break: break-word;
    }

    button {
      width: 100%;
      border: 0;
      border-radius: 14px;
      padding: 14px 16px;
      font-size: 16px;
      font-weight: 600;
      background: #4f7cff;
      color: white;
      margin-top: 10px;
    }

    button.secondary {
      background: #2a2a3a;
    }

    button:disabled {
      opacity: .6;
    }

    audio {
      width: 100%;
      margin-top: 14px;
    }

    .error {
      color: #ff7b7b;
      font-size: 13px;
      margin-top: 10px;
      white-space: pre-wrap;
    }

    .section-title {
      margin-top: 20px;
      margin-bottom: 6px;
      font-size: 14px;
      opacity: .7;
    }

    .version-btn {
      background: #1f1f2e;
      font-size: 14px;
      text-align: left;
    }

    .hint {
      opacity: .6;
      font-size: 12px;
      margin-top: 12px;
    }
  </style>
</head>

<body>
  <div class="card">
    <h1>{{.AppName}}</h1>

    <div class="meta" id="meta">Lade…</div>

    <button id="playLatest">▶ Play latest mix</button>
    <button class="secondary" id="refresh">↻ Refresh list</button>

    <audio id="player" controls preload="none"></audio>

    <div class="section-title">Versionen</div>
    <div id="versions"></div>

    <div class="error" id="error"></div>

    <div class="hint">
      Projekt: <b>{{.UserID}}/{{.ProjectID}}</b>
    </div>
  </div>

<script>
const USER_ID = "{{.UserID}}";
const PROJECT_ID = "{{.ProjectID}}";

const metaEl = document.getElementById("meta");
const errorEl = document.getElementById("error");
const player = document.getElementById("player");
const versionsEl = document.getElementById("versions");

const playLatestBtn = document.getElementById("playLatest");
const refreshBtn = document.getElementById("refresh");

function scopeQuery() {
  return "user_id=" + encodeURIComponent(USER_ID) + "&project_id=" + encodeURIComponent(PROJECT_ID);
}

async function fetchLatestMeta() {
  const res = await fetch("/latest_meta?" + scopeQuery(), { cache: "no-store" });
  if (!res.ok) throw new Error(await res.text());
  return await res.json();
}

async function fetchVersions() {
  const res = await fetch("/files?" + scopeQuery() + "&limit=25", { cache: "no-store" });
  if (!res.ok) throw new Error(await res.text());
  return await res.json();
}

function renderVersions(list) {
  versionsEl.innerHTML = "";
  if (!list.length) {
    versionsEl.innerHTML = "<div class='meta'>Keine Versionen gefunden.</div>";
    return;
  }

  for (const v of list) {
    const btn = document.createElement("button");
    btn.className = "version-btn";
    btn.textContent = "▶ " + v.created_at + " — " + v.display_name;
    btn.onclick = async () => {
      errorEl.textContent = "";
      player.src = v.audio_url;
      try {
        await player.play();
      } catch (e) {
        errorEl.textContent = String(e);
      }
    };
    versionsEl.appendChild(btn);
  }
}

async function refreshAll() {
  errorEl.textContent = "";
  metaEl.textContent = "Lade…";

  try {
    const meta = await fetchLatestMeta();
    metaEl.textContent = "Stand: " + meta.created_at + "\n" + meta.filename;
    player.src = meta.audio_url;

    const versions = await fetchVersions();
    renderVersions(versions);

  } catch (e) {
    errorEl.textContent = String(e);
  }
}

playLatestBtn.onclick = async () => {
  try {
    if (!player.src) await refreshAll();
    await player.play();
  } catch (e) {
    errorEl.textContent = String(e);
  }
};

refreshBtn.onclick = refreshAll;

// Auto-load beim Öffnen
refreshAll();
</script>

</body>
</html>
`))
