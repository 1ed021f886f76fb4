package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"regwatch/models/entities"
	"regwatch/services/tracker"
	"regwatch/utils/dates"

	"github.com/dustin/go-humanize"
)

func welcomeMessage() string {
	msg := "👋 Hi! I'm <b>Regwatch</b> 🏛\n\n"
	msg += "I follow the CFPB, OCC, FinCEN and Federal Reserve feeds and tell you when something new is published.\n\n"
	msg += "✅ <b>Want notifications?</b> Type /subscribe, or /subscribe &lt;topic&gt; for a single topic.\n"
	msg += "📰 <b>Just curious?</b> Type /latest to read the most recent updates.\n\n"
	msg += "💬 <b>Need help?</b> Type /help for a list of commands."
	return msg
}

func helpMessage(topics []entities.Topic) string {
	msg := "🤖 <b>Regwatch</b> – Help Guide\n\n"
	msg += "📝 <b>Commands available:</b>\n"
	msg += "📰 /latest [topic] – Most recent updates.\n"
	msg += "🏛 /sources – Status of each source.\n"
	msg += "✅ /subscribe [topic] – Receive new updates, optionally for one topic.\n"
	msg += "❌ /unsubscribe – Stop receiving updates.\n"
	msg += "💡 /help – Show this help message.\n\n"
	msg += "🏷 <b>Topics:</b> " + joinTopics(topics)
	return msg
}

func subscribedMessage(topic string) string {
	msg := "🎉 <b>Subscription Confirmed!</b> ✅\n\n"
	if topic == "" {
		msg += "You will receive every new regulatory update.\n"
	} else {
		msg += fmt.Sprintf("You will receive new updates about <b>%s</b>.\n", html.EscapeString(topic))
	}
	msg += "Type /unsubscribe at any time to stop."
	return msg
}

func unsubscribedMessage() string {
	msg := "👋 <b>You've Unsubscribed</b> ❌\n\n"
	msg += "You will no longer receive regulatory updates. Type /subscribe anytime to come back."
	return msg
}

func unknownMessage() string {
	msg := "😔 <b>Oops! Something Went Wrong</b>\n\n"
	msg += "I couldn't complete your request. Type /help to see what I understand."
	return msg
}

func invalidTopicMessage(argument string, topics []entities.Topic) string {
	return fmt.Sprintf("🤔 Unknown topic <b>%s</b>.\n\n🏷 <b>Topics:</b> %s",
		html.EscapeString(argument), joinTopics(topics))
}

func loadingMessage() string {
	return "⏳ Updates are still loading, try again in a moment."
}

func failedMessage() string {
	return "⚠️ No source could be reached during the last refresh. Try again later."
}

func updatesMessage(title, summary string, updates []entities.RegulatoryUpdate, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("📢 <b>" + html.EscapeString(title) + "</b>")
	if summary != "" {
		sb.WriteString(" (" + html.EscapeString(summary) + ")")
	}
	sb.WriteString("\n\n")

	if len(updates) == 0 {
		sb.WriteString("No updates match.")
		return sb.String()
	}

	for _, u := range updates {
		sb.WriteString(formatUpdate(u, now))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatUpdate(u entities.RegulatoryUpdate, now time.Time) string {
	title := html.EscapeString(u.Title)
	if u.Link != "" {
		title = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(u.Link), title)
	}

	topics := make([]string, 0, len(u.Categories))
	for _, c := range u.Categories {
		topics = append(topics, html.EscapeString(string(c)))
	}

	return fmt.Sprintf("🔹 <b>%s</b> · %s\n%s\n<i>%s</i>\n",
		html.EscapeString(u.SourceLabel), dates.Relative(u.PubDate, now), title, strings.Join(topics, ", "))
}

func sourcesMessage(snapshot tracker.Snapshot, now time.Time) string {
	if snapshot.Status == tracker.StatusLoading {
		return loadingMessage()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏛 <b>Sources</b> (refreshed %s)\n\n", humanize.RelTime(snapshot.RefreshedAt, now, "ago", "from now")))
	for _, s := range snapshot.Sources {
		mark := "✅"
		switch {
		case s.Updates == 0:
			mark = "❌"
		case s.FromCache:
			mark = "💾"
		}
		sb.WriteString(fmt.Sprintf("%s <b>%s</b>: %d updates\n", mark, html.EscapeString(s.Label), s.Updates))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func joinTopics(topics []entities.Topic) string {
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, html.EscapeString(string(t)))
	}
	return strings.Join(names, ", ")
}
