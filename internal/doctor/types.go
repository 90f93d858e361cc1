package doctor

// IssueCategory groups issues by type.
type IssueCategory string

const (
	// CategoryTools represents missing external programs.
	CategoryTools IssueCategory = "tools"
	// CategoryConfig represents config file and workdir problems.
	CategoryConfig IssueCategory = "config"
	// CategoryRepos represents registered repositories that need attention.
	CategoryRepos IssueCategory = "repos"
	// CategoryMounts represents stale rclone mount records.
	CategoryMounts IssueCategory = "mounts"
)

// Fix actions applied by --fix.
const (
	FixCreateWorkdir = "create_workdir"
	FixClone         = "clone"
	FixForgetMount   = "forget_mount"
)

// Issue represents a problem detected by doctor.
type Issue struct {
	Key         string        // tool, repo name or mountpoint
	Description string        // human-readable description
	FixAction   string        // what --fix would do, empty if nothing
	Category    IssueCategory // issue category
	Warning     bool          // does not prevent normal use
	URL         string        // clone URL for FixClone
}

// IssueStats tracks counts by category.
type IssueStats struct {
	ToolsFound    int // external programs found on PATH
	ReposHealthy  int // registered repos without issues
	ReposIssues   int // registered repos with at least one issue
	MountsActive  int // recorded mounts that are mounted
	MountsStale   int // recorded mounts that are gone
	ConfigInvalid bool
}
