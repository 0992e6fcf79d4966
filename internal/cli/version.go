package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tollgate/internal/output"
	"github.com/mrz1836/tollgate/internal/version"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	buildInfo    BuildInfo
	versionCheck bool
)

// BuildInfo carries the version stamped into the binary at link time.
type BuildInfo = version.Build

// SetBuildInfo records the build version, commit and date.
func SetBuildInfo(info BuildInfo) {
	buildInfo = info
	rootCmd.Version = formatVersion(info)
}

// formatVersion renders build information for display.
func formatVersion(info BuildInfo) string {
	return info.String()
}

// versionCmd prints the build version.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show version information",
	GroupID: groupConfig,
	Long: `Show the tollgate version, commit and build date.

With --check the latest GitHub release is fetched and compared with the
running build.`,
	Example: `  tollgate version
  tollgate version --check -o json`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}

// versionReport is the output of the version command.
type versionReport struct {
	Build  BuildInfo       `json:"build"`
	Update *version.Status `json:"update,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	report := versionReport{Build: buildInfo}

	if versionCheck {
		checker, err := version.NewChecker(version.DefaultOwner, version.DefaultRepo)
		if err != nil {
			return err
		}
		ctx, cancel := operationContext(cmd, version.DefaultTimeout)
		defer cancel()

		status, err := checker.Check(ctx, buildInfo.Version)
		if err != nil {
			return err
		}
		report.Update = &status
	}

	return render(cmd, report, func(w io.Writer) error {
		out(w, "tollgate %s\n", formatVersion(report.Build))
		if report.Update == nil {
			return nil
		}
		if report.Update.Newer {
			output.Info(w, "A newer release is available: %s (%s)", report.Update.Latest, report.Update.URL)
		} else {
			output.Success(w, "You are running the latest release")
		}
		return nil
	})
}
