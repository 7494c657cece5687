package handlers

import (
	"html/template"
)

var callbackPageTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    {{if .SettingsURL}}<meta http-equiv="refresh" content="{{.DelaySeconds}};url={{.SettingsURL}}">{{end}}
    <title>{{.ProviderName}} connection</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background-color: #f5f5f5;
            color: #333;
            display: flex;
            align-items: center;
            justify-content: center;
            min-height: 100vh;
            margin: 0;
        }

        .card {
            background-color: #fff;
            padding: 32px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            max-width: 420px;
            text-align: center;
        }

        .success h1 {
            color: #1e7e34;
        }

        .error h1 {
            color: #c82333;
        }

        .hint {
            color: #666;
            font-size: 14px;
            margin-top: 16px;
        }
    </style>
</head>
<body>
    <div class="card {{.Status}}">
        <h1>{{if eq .Status "success"}}Connected{{else}}Connection failed{{end}}</h1>
        <p>{{.Message}}</p>
        {{if .SettingsURL}}
        <p class="hint">Returning to settings in {{.DelaySeconds}} seconds.
            <a href="{{.SettingsURL}}">Continue now</a></p>
        {{end}}
    </div>
</body>
</html>
`))

type callbackPage struct {
	ProviderName string
	Status       string
	Message      string
	SettingsURL  string
	DelaySeconds int
}
