package format

import (
	"fmt"
	"strings"

	"github.com/s0up4200/marquee/tmdb"
	"github.com/s0up4200/marquee/watchlist"
)

const (
	branch     = "├"
	lastBranch = "╰"
	pipe       = "│"
	dateLayout = "2006-01-02"
)

// FormatOptions contains options for formatting output
type FormatOptions struct {
	// ShowDetails adds ids, release dates and poster links
	ShowDetails bool
	// ShowOverview adds a shortened overview line
	ShowOverview bool
}

// ConsoleFormatter provides console output formatting for catalog data
type ConsoleFormatter struct {
	imageBase string
}

// NewConsoleFormatter creates a new console formatter. imageBase is used to
// render poster links and may be empty.
func NewConsoleFormatter(imageBase string) *ConsoleFormatter {
	return &ConsoleFormatter{imageBase: strings.TrimRight(imageBase, "/")}
}

func treePrefix(isLast bool) (prefix, indent string) {
	if isLast {
		return lastBranch, "    "
	}
	return branch, pipe + "   "
}

// FormatItems formats a list of items under a heading
func (f *ConsoleFormatter) FormatItems(heading string, items []tmdb.Item, options FormatOptions) string {
	if len(items) == 0 {
		return "No results found"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (%d):\n\n", heading, len(items))

	for i, item := range items {
		isLast := i == len(items)-1
		f.formatItem(&sb, item, isLast, options)

		if !isLast {
			sb.WriteString(pipe + "\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// formatItem formats a single item entry
func (f *ConsoleFormatter) formatItem(sb *strings.Builder, item tmdb.Item, isLast bool, options FormatOptions) {
	prefix, indent := treePrefix(isLast)

	fmt.Fprintf(sb, "%s── %s\n", prefix, itemHeadline(item))

	if item.Role != "" {
		fmt.Fprintf(sb, "%sAs: %s\n", indent, item.Role)
	}

	if options.ShowDetails {
		fmt.Fprintf(sb, "%sID: %s\n", indent, item.Key())
		if item.ReleaseDate != "" {
			fmt.Fprintf(sb, "%sReleased: %s\n", indent, item.ReleaseDate)
		}
		if poster := tmdb.BuildImageURL(f.imageBase, item.PosterPath, tmdb.ImageSizeLarge); poster != "" && f.imageBase != "" {
			fmt.Fprintf(sb, "%sPoster: %s\n", indent, poster)
		}
	}

	if options.ShowOverview && item.Overview != "" {
		fmt.Fprintf(sb, "%s%s\n", indent, Truncate(item.Overview, 100))
	}
}

// itemHeadline renders "Title (Year) [type] ★ 7.9"
func itemHeadline(item tmdb.Item) string {
	if item.MediaType == tmdb.MediaTypePerson {
		return fmt.Sprintf("%s [person]", item.Title)
	}

	headline := fmt.Sprintf("%s (%s) [%s]", item.Title, FormatYear(item.ReleaseDate), item.MediaType)
	if item.VoteAverage != nil {
		headline += " ★ " + FormatVote(item.VoteAverage)
	}
	return headline
}

// FormatTitle formats the details, cast and videos of a movie or TV show
func (f *ConsoleFormatter) FormatTitle(title *tmdb.Title, saved bool) string {
	d := title.Details

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n", d.Title)
	fmt.Fprintf(&sb, "%s · %s", FormatYear(d.ReleaseDate), subtitle(d))
	if d.VoteAverage != nil {
		fmt.Fprintf(&sb, " · ★ %s", FormatVote(d.VoteAverage))
	}
	if saved {
		sb.WriteString(" · Saved")
	}
	sb.WriteString("\n")

	if d.Tagline != "" {
		fmt.Fprintf(&sb, "\"%s\"\n", d.Tagline)
	}
	if len(d.Genres) > 0 {
		names := make([]string, 0, len(d.Genres))
		for _, g := range d.Genres {
			names = append(names, g.Name)
		}
		fmt.Fprintf(&sb, "Genres: %s\n", strings.Join(names, ", "))
	}
	if poster := tmdb.BuildImageURL(f.imageBase, d.PosterPath, tmdb.ImageSizeLarge); poster != "" && f.imageBase != "" {
		fmt.Fprintf(&sb, "Poster: %s\n", poster)
	}

	sb.WriteString("\nOverview:\n")
	if d.Overview != "" {
		fmt.Fprintf(&sb, "%s\n", d.Overview)
	} else {
		sb.WriteString("No overview available.\n")
	}

	if title.Credits != nil {
		cast := title.Credits.TopCast(12)
		if len(cast) > 0 {
			fmt.Fprintf(&sb, "\nCast (%d):\n", len(cast))
			for i, member := range cast {
				prefix, _ := treePrefix(i == len(cast)-1)
				line := member.Name
				if member.Character != "" {
					line += " as " + member.Character
				}
				fmt.Fprintf(&sb, "%s── %s (#%d)\n", prefix, line, member.ID)
			}
		}
	}

	if featured := title.Videos.Featured(); len(featured) > 0 {
		fmt.Fprintf(&sb, "\nVideos (%d):\n", len(featured))
		for i, video := range featured {
			prefix, _ := treePrefix(i == len(featured)-1)
			fmt.Fprintf(&sb, "%s── %s [%s] %s\n", prefix, video.Name, video.Type, video.URL())
		}
	}

	if d.MediaType == tmdb.MediaTypeTV && len(d.Seasons) > 0 {
		fmt.Fprintf(&sb, "\nSeasons (%d):\n", len(d.Seasons))
		for i, season := range d.Seasons {
			prefix, _ := treePrefix(i == len(d.Seasons)-1)
			fmt.Fprintf(&sb, "%s── %s (%d episodes, %s)\n",
				prefix, season.Name, season.EpisodeCount, FormatYear(season.AirDate))
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func subtitle(d *tmdb.Details) string {
	if d.MediaType == tmdb.MediaTypeMovie {
		return FormatRuntime(d.Runtime)
	}
	return fmt.Sprintf("%d seasons", d.NumberOfSeasons)
}

// FormatPerson formats a person and their best known credits
func (f *ConsoleFormatter) FormatPerson(profile *tmdb.PersonProfile, limit int) string {
	p := profile.Person

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n", p.Name)

	var facts []string
	if p.KnownForDepartment != "" {
		facts = append(facts, p.KnownForDepartment)
	}
	if p.Birthday != "" {
		facts = append(facts, "Born "+p.Birthday)
	}
	if p.PlaceOfBirth != "" {
		facts = append(facts, p.PlaceOfBirth)
	}
	if len(facts) > 0 {
		fmt.Fprintf(&sb, "%s\n", strings.Join(facts, " | "))
	}

	sb.WriteString("\nBiography:\n")
	if p.Biography != "" {
		fmt.Fprintf(&sb, "%s\n", p.Biography)
	} else {
		sb.WriteString("No biography available.\n")
	}

	if profile.Credits != nil && len(profile.Credits.Cast) > 0 {
		credits := profile.Credits.Cast
		if limit > 0 && len(credits) > limit {
			credits = credits[:limit]
		}
		sb.WriteString(f.FormatItems("Known for", credits, FormatOptions{}))
	} else {
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatSeason formats a season and its episodes
func (f *ConsoleFormatter) FormatSeason(season *tmdb.Season) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (%s)\n", season.Name, FormatYear(season.AirDate))
	if season.Overview != "" {
		fmt.Fprintf(&sb, "%s\n", season.Overview)
	}

	if len(season.Episodes) == 0 {
		sb.WriteString("\nNo episodes found\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "\nEpisodes (%d):\n\n", len(season.Episodes))
	for i, ep := range season.Episodes {
		isLast := i == len(season.Episodes)-1
		prefix, indent := treePrefix(isLast)

		fmt.Fprintf(&sb, "%s── %d. %s\n", prefix, ep.EpisodeNumber, ep.Name)

		var parts []string
		if ep.AirDate != "" {
			parts = append(parts, "Aired: "+ep.AirDate)
		}
		if ep.Runtime > 0 {
			parts = append(parts, FormatRuntime(ep.Runtime))
		}
		if ep.VoteAverage != nil {
			parts = append(parts, "★ "+FormatVote(ep.VoteAverage))
		}
		if len(parts) > 0 {
			fmt.Fprintf(&sb, "%s%s\n", indent, strings.Join(parts, " | "))
		}

		if !isLast {
			sb.WriteString(pipe + "\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatGenres formats the genre list of a media type
func (f *ConsoleFormatter) FormatGenres(mt tmdb.MediaType, genres []tmdb.Genre) string {
	if len(genres) == 0 {
		return "No genres found"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s genres (%d):\n\n", mt, len(genres))
	for i, genre := range genres {
		prefix, _ := treePrefix(i == len(genres)-1)
		fmt.Fprintf(&sb, "%s── %s (%d)\n", prefix, genre.Name, genre.ID)
	}
	sb.WriteString("\n")
	return sb.String()
}

// FormatWatchlist formats the saved entries, newest first
func (f *ConsoleFormatter) FormatWatchlist(entries []watchlist.Entry) string {
	if len(entries) == 0 {
		return "Your watchlist is empty"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nWatchlist (%d):\n\n", len(entries))

	for i, entry := range entries {
		isLast := i == len(entries)-1
		prefix, indent := treePrefix(isLast)

		fmt.Fprintf(&sb, "%s── %s\n", prefix, itemHeadline(entry.Item))
		fmt.Fprintf(&sb, "%sID: %s | Added: %s\n", indent, entry.Key(), entry.AddedAt.Format(dateLayout))

		if !isLast {
			sb.WriteString(pipe + "\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}
