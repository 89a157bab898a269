package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"inkwell/internal/models"
)

// announceTimeout bounds a single background announcement.
const announceTimeout = 2 * time.Minute

// SubscriberLister returns the addresses to announce new posts to.
// *store.SubscriberStore implements it.
type SubscriberLister interface {
	ListEmails(ctx context.Context) ([]string, error)
}

// Notifier renders and sends Inkwell's emails.
type Notifier struct {
	subscribers SubscriberLister
	mailer      Mailer
	appURL      string
	wg          sync.WaitGroup
}

// New creates a Notifier. appURL is used to build absolute links.
func New(subscribers SubscriberLister, mailer Mailer, appURL string) *Notifier {
	return &Notifier{
		subscribers: subscribers,
		mailer:      mailer,
		appURL:      strings.TrimRight(appURL, "/"),
	}
}

// PostLink returns the public URL of a post.
func (n *Notifier) PostLink(slug string) string {
	return n.appURL + "/post/" + url.PathEscape(slug)
}

// AnnouncePost emails every subscriber about a newly published post in a
// single message. No subscribers means no mail.
func (n *Notifier) AnnouncePost(ctx context.Context, post *models.Post) error {
	emails, err := n.subscribers.ListEmails(ctx)
	if err != nil {
		return fmt.Errorf("announce post: %w", err)
	}
	if len(emails) == 0 {
		return nil
	}

	html, err := render(newPostTmpl, newPostData{
		Title:       post.Title,
		Excerpt:     post.Excerpt,
		ReadingTime: post.ReadingTime,
		Link:        n.PostLink(post.Slug),
		Year:        time.Now().Year(),
	})
	if err != nil {
		return err
	}

	msg := Message{
		To:      emails,
		Subject: "New Post: " + post.Title + "!",
		HTML:    html,
		Text:    fmt.Sprintf("%s\n\n%s\n\nReading time: %d min\n%s\n", post.Title, post.Excerpt, post.ReadingTime, n.PostLink(post.Slug)),
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("announce post %s: %w", post.Slug, err)
	}

	slog.Info("newsletter sent", "slug", post.Slug, "recipients", len(emails))
	return nil
}

// AnnouncePostAsync runs AnnouncePost in the background, detached from
// the request. Failures are logged and dropped.
func (n *Notifier) AnnouncePostAsync(post *models.Post) {
	p := *post
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
		defer cancel()

		if err := n.AnnouncePost(ctx, &p); err != nil {
			slog.Error("newsletter failed", "error", err, "slug", p.Slug)
		}
	}()
}

// SendPasswordReset mails a reset link carrying token to the user.
func (n *Notifier) SendPasswordReset(ctx context.Context, user *models.User, token string, ttl time.Duration) error {
	link := n.appURL + "/reset-password?token=" + url.QueryEscape(token)
	html, err := render(resetTmpl, resetData{
		Name:    user.Name,
		Link:    link,
		Expires: humanDuration(ttl),
	})
	if err != nil {
		return err
	}

	msg := Message{
		To:      []string{user.Email},
		Subject: "Reset your Inkwell password",
		HTML:    html,
		Text:    "Reset your password: " + link + "\n",
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	return nil
}

// Wait blocks until background announcements finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
