// Package tips provides short usage tips for rack discovery.
package tips

import "time"

// all is the tip pool, one per major rack habit.
var all = []string{
	"`rack task add \"idea\"` to capture a thought before it escapes. Rate it later.",
	"`rack task rate <id> 4 3 2` sets impact, consequences and friction in one go.",
	"`rack task edit <id> -e 30` gives a task an estimate so it can be planned.",
	"`rack task edit <id> -d none` clears a due date. \"none\" clears any field.",
	"Any unique id prefix of four or more characters works wherever an id is expected.",
	"`rack top3 apply` fills today's Top 3 with the best rated tasks that fit.",
	"`rack top3 set <id>` locks a task into the Top 3 so suggestions keep it.",
	"Only one monster (90+ minutes or low confidence) fits in the Top 3 at a time.",
	"`rack rerack` replans what still fits before the workday ends.",
	"`rack rerack --defer` moves what doesn't fit to tomorrow.",
	"`rack task done <id> --actual 45` records real time and sharpens future estimates.",
	"`rack task start <id>` starts the clock; `done` then uses the elapsed time.",
	"`rack stats` shows how far off your estimates run per category.",
	"`rack capacity set 2h` shrinks today's budget for a day full of meetings.",
	"`rack settings set slack_percent 30` keeps more of the day unplanned.",
	"`rack task add \"standup\" --recur daily` repeats a task after each completion.",
	"`rack task add \"rent\" --recur monthly --recur-day 1` repeats on the first.",
	"`rack task add \"step\" --parent <id>` splits a monster into subtasks.",
	"`rack find -i` fuzzy-picks a task and shows everything about it.",
	"`rack export -o rack.yaml` writes everything to a file you can read.",
	"`rack backup list` shows the rolling backups rack keeps after each change.",
	"Set $RACK_BACKUP_PASSPHRASE to encrypt backups with age.",
	"`rack doctor` checks config, database and backups in one pass.",
}

// All returns all tips in the pool.
func All() []string {
	return all
}

// Daily returns a deterministic tip for the given day.
// The same tip is returned all day; it changes each day.
func Daily(t time.Time) string {
	dayOfYear := t.YearDay()
	return all[dayOfYear%len(all)]
}

// Random returns a tip based on the current time's minute,
// useful when you want variety within a day.
func Random(t time.Time) string {
	return all[t.Minute()%len(all)]
}
