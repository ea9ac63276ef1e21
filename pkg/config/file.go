package config

import (
	"bytes"
	"text/template"
)

var configFileTmpl = template.Must(template.New("config").Parse(`# Soft LFS Server configurations

# The name of the server.
name: "{{ .Name }}"

# Logging configuration.
log:
  # Log format to use. Valid values are "json", "logfmt", and "text".
  format: "{{ .Log.Format }}"
  # Time format for the log "timestamp" field.
  # Should be described in Golang's time format.
  time_format: "{{ .Log.TimeFormat }}"
  # Path to the log file. Leave empty to write to stderr.
  #path: "{{ .Log.Path }}"

# The HTTP server configuration.
http:
  # The address on which the HTTP server will listen.
  listen_addr: "{{ .HTTP.ListenAddr }}"

  # The path to the TLS private key.
  tls_key_path: "{{ .HTTP.TLSKeyPath }}"

  # The path to the TLS certificate.
  tls_cert_path: "{{ .HTTP.TLSCertPath }}"

# The stats server configuration.
stats:
  # Whether to serve Prometheus metrics.
  enabled: {{ .Stats.Enabled }}

  # The address on which the stats server will listen.
  listen_addr: "{{ .Stats.ListenAddr }}"

# Git LFS batch API configuration.
lfs:
  # Operations allowed without credentials. Valid values are "download" and
  # "upload".
  anonymous_operations:{{ range .LFS.AnonymousOperations }}
    - "{{ . }}"{{ else }} []{{ end }}

  # Lifetime of signed object URLs in seconds.
  expires: {{ .LFS.Expires }}

# Object store configuration.
storage:
  # The bucket holding LFS objects.
  bucket: "{{ .Storage.Bucket }}"

  # The bucket region. Leave empty to use the AWS default configuration.
  region: "{{ .Storage.Region }}"

  # A custom endpoint for S3 compatible object stores.
  #endpoint: "{{ .Storage.Endpoint }}"

  # Use path-style addressing, required by most S3 compatible stores.
  path_style: {{ .Storage.PathStyle }}

  # Static credentials. Leave empty to use the AWS default credential chain.
  #access_key_id: ""
  #secret_access_key: ""

# Identity provider configuration.
identity:
  # Either "cognito" or "database".
  provider: "{{ .Identity.Provider }}"

  # The Cognito user pool region.
  region: "{{ .Identity.Region }}"

  # The Cognito user pool and app client.
  user_pool_id: "{{ .Identity.UserPoolID }}"
  client_id: "{{ .Identity.ClientID }}"
  #client_secret: ""

# The database configuration, used by the "database" identity provider.
db:
  # The database driver to use.
  # Valid values are "sqlite" and "postgres".
  driver: "{{ .DB.Driver }}"
  # The database data source name.
  # This is driver specific and can be a file path or connection string.
  # Make sure foreign key support is enabled when using SQLite.
  data_source: "{{ .DB.DataSource }}"
`))

func newConfigFile(cfg *Config) string {
	var b bytes.Buffer
	configFileTmpl.Execute(&b, cfg) // nolint: errcheck
	return b.String()
}
