// Package constants provides shared constants used throughout flowtag.
// This includes timeouts, batch sizes, file permissions and the default
// locations and names of the n8n resources flowtag reconciles against.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for n8n API requests
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultSQLTimeout bounds a single grouped SQL execution
	DefaultSQLTimeout = 60 * time.Second
)

// FilePermissions is the permission of a created log file (rw-r--r--)
const FilePermissions = 0644

// Limit constants define various limits and capacities
const (
	// StatementBatchSize is the number of insert statements grouped per execution
	StatementBatchSize = 100

	// DisplayNameWidth truncates workflow names in progress lines
	DisplayNameWidth = 50

	// DryRunPreviewLimit caps how many assignments a dry-run prints
	DryRunPreviewLimit = 50
)

// n8n defaults
const (
	// APIPathPrefix is the prefix of the n8n public API
	APIPathPrefix = "/api/v1"

	// APIKeyHeader is the header carrying the n8n API key
	APIKeyHeader = "X-N8N-API-KEY"

	// DefaultContainer is the docker container running the n8n database
	DefaultContainer = "n8n-postgres"

	// DefaultDBUser is the default n8n database user
	DefaultDBUser = "n8n"

	// DefaultDBName is the default n8n database name
	DefaultDBName = "n8n"

	// WorkflowTagsTable is the association table between workflows and tags
	WorkflowTagsTable = "workflows_tags"

	// WorkflowIDColumn is the workflow column of the association table
	WorkflowIDColumn = "workflowId"

	// TagIDColumn is the tag column of the association table
	TagIDColumn = "tagId"

	// TagTable is the table probed to verify database connectivity
	TagTable = "tag_entity"
)

// Path constants
const (
	// DefaultDeployLog is the deploy log read when no path is configured
	DefaultDeployLog = "scripts/deploy_log.txt"

	// DefaultWorkflowsDir is the source tree read when no path is configured
	DefaultWorkflowsDir = "voice_ai/workflows"

	// ConfigFileName is the config file name searched in $HOME and the working directory
	ConfigFileName = ".flowtag"

	// DefinitionExt is the extension of workflow definition files
	DefinitionExt = ".json"
)
