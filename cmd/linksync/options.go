package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/linksync/internal/config"
	"github.com/bamsammich/linksync/internal/filter"
)

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// profileFlags override the settings of the selected profile. Only flags
// set on the command line take effect.
type profileFlags struct {
	chain        *filter.Chain
	remote       string
	local        string
	prefix       string
	sourcePrefix string
	lister       string
	rclone       string
	cookie       string
	filterFile   string
	probeDelay   time.Duration
	probeLevels  int
	noProbe      bool
	dryRun       bool
}

func newProfileFlags() *profileFlags {
	return &profileFlags{chain: filter.NewChain()}
}

// bindTree registers the flags that describe the two trees.
func (o *profileFlags) bindTree(fs *pflag.FlagSet) {
	fs.StringVar(&o.remote, "remote", "", "remote tree: rclone remote:path, s3://bucket/prefix, sftp://host/path or a local path")
	fs.StringVar(&o.local, "local", "", "local mirror root (absolute path)")
	fs.StringVar(&o.lister, "lister", "", "remote lister: rclone-json, rclone-tree, local, s3 or sftp (default: from --remote)")
	fs.StringVar(&o.rclone, "rclone", "", "rclone executable (default: rclone)")
	fs.StringVar(&o.cookie, "cookie", "", "cookie header passed to rclone for HTTP backends")

	fs.VarP(&filterFlag{chain: o.chain, include: false}, "exclude", "", "exclude paths matching PATTERN (repeatable)")
	fs.VarP(&filterFlag{chain: o.chain, include: true}, "include", "", "include paths matching PATTERN (repeatable)")
	fs.StringVar(&o.filterFile, "filter", "", "read filter rules from FILE")
}

// bindLink registers the flags that control link creation.
func (o *profileFlags) bindLink(fs *pflag.FlagSet) {
	fs.StringVar(&o.prefix, "prefix", "", "link target prefix, usually the mount of the remote")
	fs.BoolVar(&o.dryRun, "dry-run", false, "log what would change without writing")
	fs.DurationVar(&o.probeDelay, "probe-delay", 0, "pause between directory listings while refreshing the mount")
	fs.IntVar(&o.probeLevels, "probe-levels", 0, "maximum directory depth the refresh walk descends")
	fs.BoolVar(&o.noProbe, "no-probe", false, "link without checking the target is visible")
}

// apply copies every flag set on the command line into p.
//
//nolint:revive // cyclomatic: one branch per flag
func (o *profileFlags) apply(cmd *cobra.Command, p *config.Profile) {
	changed := cmd.Flags().Changed
	if changed("remote") {
		p.Remote = o.remote
	}
	if changed("local") {
		p.Local = o.local
	}
	if changed("prefix") {
		p.LinkPrefix = o.prefix
	}
	if changed("source-prefix") {
		p.SourcePrefix = o.sourcePrefix
	}
	if changed("lister") {
		p.Lister = o.lister
	}
	if changed("rclone") {
		p.Rclone = o.rclone
	}
	if changed("cookie") {
		p.Cookie = o.cookie
	}
	if changed("filter") {
		p.FilterFile = o.filterFile
	}
	if changed("dry-run") {
		v := o.dryRun
		p.DryRun = &v
	}
	if changed("probe-delay") {
		p.Probe.Delay = o.probeDelay
	}
	if changed("probe-levels") {
		p.Probe.MaxLevels = o.probeLevels
	}
	if changed("no-probe") {
		p.Probe.Disabled = o.noProbe
	}
}

// resolve loads the selected profile and layers the command-line flags on
// top of it.
func (o *profileFlags) resolve(cmd *cobra.Command, gf *globalFlags) (string, config.Profile, config.Config, error) {
	cfg, err := gf.loadConfig()
	if err != nil {
		return "", config.Profile{}, cfg, err
	}
	p, err := cfg.Profile(gf.profile)
	if err != nil {
		return "", config.Profile{}, cfg, err
	}
	o.apply(cmd, &p)
	return profileName(cfg, gf.profile), p, cfg, nil
}

// profileName is the name a resolved profile is reported under.
func profileName(cfg config.Config, name string) string {
	if name != "" {
		return name
	}
	if cfg.Defaults.Profile != nil {
		return *cfg.Defaults.Profile
	}
	if names := cfg.ProfileNames(); len(names) == 1 {
		return names[0]
	}
	return ""
}

// buildFilter combines command-line rules with a profile's filter file and
// rule lists. Rules from the command line come first, so they win.
func buildFilter(cli *filter.Chain, p config.Profile) (*filter.Chain, error) {
	chain := filter.NewChain()
	for _, r := range cli.Rules() {
		if err := chain.AddRule(r.String()); err != nil {
			return nil, err
		}
	}
	if p.FilterFile != "" {
		if err := chain.LoadFile(p.FilterFile); err != nil {
			return nil, fmt.Errorf("load filter file: %w", err)
		}
	}
	for _, glob := range p.Exclude {
		if err := chain.AddExclude(glob); err != nil {
			return nil, fmt.Errorf("exclude %q: %w", glob, err)
		}
	}
	for _, glob := range p.Include {
		if err := chain.AddInclude(glob); err != nil {
			return nil, fmt.Errorf("include %q: %w", glob, err)
		}
	}
	return chain, nil
}
