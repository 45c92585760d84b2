// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/corkboard/corkboard/lib/clock"
	"github.com/corkboard/corkboard/lib/identifier"
	"github.com/corkboard/corkboard/lib/ref"
)

// Store is the persistence contract for the board document. The store
// exclusively owns the document; the Relay performs whole-document
// read-modify-write cycles through it. Load must return an empty (not
// nil) document when no state has been written yet, and both ends must
// be normalized (no nil maps).
type Store interface {
	Load() (*Document, error)
	Save(*Document) error
}

// Card is the structured body of a board notice: a heading carrying
// the instructional command hint, the message text, and the post's
// accent color.
type Card struct {
	Title string
	Body  string
	Color int
}

// UserHandle is a resolved user: the opaque ID plus whatever display
// information the transport knows. The Relay only uses it to confirm
// a recipient is reachable before routing a notice.
type UserHandle struct {
	ID          ref.UserID
	DisplayName string
}

// Messenger is the outbound transport contract. Implementations
// deliver to a user's direct-message channel or to a shared room,
// rendering the Card however the transport supports.
type Messenger interface {
	SendToUser(ctx context.Context, user ref.UserID, text string, card Card) error
	SendToChannel(ctx context.Context, room ref.RoomID, text string, card Card) error
	ResolveUser(ctx context.Context, user ref.UserID) (UserHandle, error)
}

// RelayConfig holds the dependencies and policy for a Relay.
type RelayConfig struct {
	// Store persists the board document (required).
	Store Store
	// Messenger delivers notices (required).
	Messenger Messenger
	// Generator allocates post and reply tokens. If nil,
	// identifier.Real() is used.
	Generator identifier.Generator
	// Clock supplies creation timestamps. If nil, clock.Real() is used.
	Clock clock.Clock
	// Moderators are the identities allowed to approve any post and
	// close any post.
	Moderators []ref.UserID
	// BoardRoom is the public channel approved posts are broadcast to
	// (required).
	BoardRoom ref.RoomID
	// ApprovalRoom is the moderation channel that receives approval
	// requests (required).
	ApprovalRoom ref.RoomID
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
}

// Relay is the board state machine. All four operations serialize
// behind one mutex: the store document is the unit of atomicity, and
// a single-writer boundary is what makes the load → mutate → save
// cycle safe against interleaved commands (two simultaneous replies
// to one post both see each other's reply-id allocation).
type Relay struct {
	mu sync.Mutex

	store      Store
	messenger  Messenger
	generator  identifier.Generator
	clock      clock.Clock
	moderators map[ref.UserID]bool

	boardRoom    ref.RoomID
	approvalRoom ref.RoomID

	logger *slog.Logger
}

// NewRelay validates the configuration and returns a Relay.
func NewRelay(config RelayConfig) (*Relay, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("board: Store is required")
	}
	if config.Messenger == nil {
		return nil, fmt.Errorf("board: Messenger is required")
	}
	if config.BoardRoom.IsZero() {
		return nil, fmt.Errorf("board: BoardRoom is required")
	}
	if config.ApprovalRoom.IsZero() {
		return nil, fmt.Errorf("board: ApprovalRoom is required")
	}

	generator := config.Generator
	if generator == nil {
		generator = identifier.Real()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	moderators := make(map[ref.UserID]bool, len(config.Moderators))
	for _, moderator := range config.Moderators {
		moderators[moderator] = true
	}

	return &Relay{
		store:        config.Store,
		messenger:    config.Messenger,
		generator:    generator,
		clock:        clk,
		moderators:   moderators,
		boardRoom:    config.BoardRoom,
		approvalRoom: config.ApprovalRoom,
		logger:       logger,
	}, nil
}

// IsModerator reports whether the given user is in the configured
// moderator set.
func (r *Relay) IsModerator(user ref.UserID) bool {
	return r.moderators[user]
}

// maxAllocationAttempts bounds the collision retry loop for token
// allocation. With a 36^6 space and at most a handful of open posts,
// a single retry is already vanishingly unlikely; hitting the bound
// indicates a broken generator, not bad luck.
const maxAllocationAttempts = 100

// allocatePostID returns a fresh post ID that is not present in the
// document's open posts.
func (r *Relay) allocatePostID(document *Document) (ref.PostID, error) {
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		postID, err := ref.ParsePostID(r.generator.NewToken())
		if err != nil {
			return ref.PostID{}, fmt.Errorf("board: generator produced invalid token: %w", err)
		}
		if _, taken := document.Posts[postID]; !taken {
			return postID, nil
		}
	}
	return ref.PostID{}, fmt.Errorf("board: exhausted %d attempts allocating a post ID", maxAllocationAttempts)
}

// allocateReplyID returns a fresh reply ID that is not present in the
// post's reply map.
func (r *Relay) allocateReplyID(post *Post) (ref.ReplyID, error) {
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		replyID, err := ref.ParseReplyID(r.generator.NewToken())
		if err != nil {
			return ref.ReplyID{}, fmt.Errorf("board: generator produced invalid token: %w", err)
		}
		if _, taken := post.Replies[replyID]; !taken {
			return replyID, nil
		}
	}
	return ref.ReplyID{}, fmt.Errorf("board: exhausted %d attempts allocating a reply ID", maxAllocationAttempts)
}

// Create submits a new post. The message is stored verbatim. The
// author receives a preview, and the approval room receives a request
// carrying the approve/decline command hints and the message body.
func (r *Relay) Create(ctx context.Context, author ref.UserID, message string) (ref.PostID, error) {
	if strings.TrimSpace(message) == "" {
		return ref.PostID{}, fmt.Errorf("post message: %w", ErrMalformedInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	document, err := r.store.Load()
	if err != nil {
		return ref.PostID{}, fmt.Errorf("board: loading state: %w", err)
	}

	postID, err := r.allocatePostID(document)
	if err != nil {
		return ref.PostID{}, err
	}

	post := &Post{
		Poster:    author,
		Message:   message,
		Color:     accentColor(postID),
		Approved:  false,
		Replies:   make(map[ref.ReplyID]ref.UserID),
		CreatedAt: r.clock.Now().Unix(),
	}
	document.Posts[postID] = post

	if err := r.store.Save(document); err != nil {
		return ref.PostID{}, fmt.Errorf("board: saving state: %w", err)
	}

	r.logger.Info("post created", "post_id", postID)

	// Delivery happens after the mutation is durable. Failures are
	// logged and not rolled back: the post exists either way, and
	// moderators can still act on it by ID.
	preview := Card{
		Title: "Your post is awaiting approval",
		Body:  post.Message,
		Color: post.Color,
	}
	if err := r.messenger.SendToUser(ctx, author, "Post "+postID.String()+" submitted for approval.", preview); err != nil {
		r.logger.Error("post preview delivery failed", "post_id", postID, "error", err)
	}

	request := Card{
		Title: "To approve type `post approve " + postID.String() + "`, or decline with `post close " + postID.String() + "`",
		Body:  post.Message,
		Color: post.Color,
	}
	if err := r.messenger.SendToChannel(ctx, r.approvalRoom, "New post awaiting approval", request); err != nil {
		r.logger.Error("approval request delivery failed", "post_id", postID, "error", err)
	}

	return postID, nil
}

// Approve marks a post approved and broadcasts it to the board room
// with reply instructions. Only moderators may approve. Re-approving
// an already approved post simply re-broadcasts it.
func (r *Relay) Approve(ctx context.Context, postID ref.PostID, actor ref.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	document, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("board: loading state: %w", err)
	}

	post, exists := document.Posts[postID]
	if !exists {
		return fmt.Errorf("approve %s: %w", postID, ErrNotFound)
	}
	if !r.moderators[actor] {
		return fmt.Errorf("approve %s: %w", postID, ErrForbidden)
	}

	post.Approved = true
	if err := r.store.Save(document); err != nil {
		return fmt.Errorf("board: saving state: %w", err)
	}

	r.logger.Info("post approved", "post_id", postID, "moderator_localpart", actor.Localpart())

	announcement := Card{
		Title: "To reply, DM me `post reply " + postID.String() + "` followed by your message",
		Body:  post.Message,
		Color: post.Color,
	}
	if err := r.messenger.SendToChannel(ctx, r.boardRoom, "New post "+postID.String(), announcement); err != nil {
		r.logger.Error("board broadcast delivery failed", "post_id", postID, "error", err)
	}

	return nil
}

// Close deletes a post and all its reply mappings. Only a moderator or
// the post's author may close. Where the closure notice goes depends
// on the post's state:
//
//   - approved: broadcast to the board room (the audience saw the
//     post, so it sees the closure);
//   - unapproved, closed by a moderator: DM to the original poster
//     (a decline: only the author ever knew the post existed);
//   - unapproved, closed by the author: acknowledged to the author
//     only (a withdrawal: nobody else needs to hear about it).
func (r *Relay) Close(ctx context.Context, postID ref.PostID, message string, actor ref.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	document, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("board: loading state: %w", err)
	}

	post, exists := document.Posts[postID]
	if !exists {
		return fmt.Errorf("close %s: %w", postID, ErrNotFound)
	}

	isAuthor := actor == post.Poster
	if !isAuthor && !r.moderators[actor] {
		return fmt.Errorf("close %s: %w", postID, ErrForbidden)
	}

	delete(document.Posts, postID)
	if err := r.store.Save(document); err != nil {
		return fmt.Errorf("board: saving state: %w", err)
	}

	r.logger.Info("post closed", "post_id", postID, "was_approved", post.Approved, "by_author", isAuthor)

	notice := Card{
		Title: "Post " + postID.String() + " has been closed",
		Body:  message,
		Color: post.Color,
	}

	switch {
	case post.Approved:
		if err := r.messenger.SendToChannel(ctx, r.boardRoom, "Post "+postID.String()+" closed", notice); err != nil {
			r.logger.Error("closure broadcast delivery failed", "post_id", postID, "error", err)
		}
	case !isAuthor:
		if err := r.deliverToUser(ctx, post.Poster, "Your post "+postID.String()+" was declined", notice); err != nil {
			r.logger.Error("closure notice delivery failed", "post_id", postID, "error", err)
		}
	default:
		// Self-withdrawal of an unapproved post: no third party is
		// told anything.
		if err := r.messenger.SendToUser(ctx, actor, "Post "+postID.String()+" closed.", notice); err != nil {
			r.logger.Error("closure acknowledgment delivery failed", "post_id", postID, "error", err)
		}
	}

	return nil
}

// Reply routes an anonymous reply. The target is either a bare post ID
// (a reader replying to the post) or a composite POSTID_REPLYID token
// (the author replying to a specific prior replier). The notice sent
// to the recipient embeds the token the recipient should use to write
// back: the composite token when the recipient is the author, the bare
// post ID when the recipient is a replier (repliers hold no token of
// their own: only the author exposes a single per-replier address).
func (r *Relay) Reply(ctx context.Context, target ref.ReplyTarget, message string, actor ref.UserID) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("reply message: %w", ErrMalformedInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	document, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("board: loading state: %w", err)
	}

	post, exists := document.Posts[target.Post]
	if !exists {
		return fmt.Errorf("reply to %s: %w", target.Post, ErrNotFound)
	}

	var recipient ref.UserID
	var replyBackToken string

	if actor == post.Poster {
		// The author is replying. A bare post ID is ambiguous here:
		// there may be many repliers, so the author must name one via
		// the composite token.
		if !target.IsComposite() {
			return fmt.Errorf("reply to %s: author must address a replier as POSTID_REPLYID: %w", target.Post, ErrInvalidTarget)
		}
		replier, known := post.Replies[target.Reply]
		if !known {
			// Forged or stale token: no such reply ID on record.
			return fmt.Errorf("reply to %s: unknown reply ID %s: %w", target.Post, target.Reply, ErrInvalidTarget)
		}
		recipient = replier
		replyBackToken = target.Post.String()
	} else {
		// A reader addresses the post by its bare ID. A composite
		// token from a non-author names a reply mapping the actor
		// does not own, so it is rejected rather than silently
		// stripped to the post ID.
		if target.IsComposite() {
			return fmt.Errorf("reply to %s: only the author addresses repliers: %w", target.Post, ErrInvalidTarget)
		}
		// A reader is replying to the post. Reuse the reader's
		// existing reply ID so their address stays stable across
		// the whole exchange; allocate one only on first contact.
		replyID := post.replyIDFor(actor)
		if replyID.IsZero() {
			replyID, err = r.allocateReplyID(post)
			if err != nil {
				return err
			}
			post.Replies[replyID] = actor
			if err := r.store.Save(document); err != nil {
				return fmt.Errorf("board: saving state: %w", err)
			}
			r.logger.Info("reply ID allocated", "post_id", target.Post, "reply_id", replyID)
		}
		recipient = post.Poster
		replyBackToken = ref.CompositeToken(target.Post, replyID)
	}

	notice := Card{
		Title: "To reply, DM me `post reply " + replyBackToken + "` followed by your message",
		Body:  message,
		Color: post.Color,
	}
	// The reply mapping (if any) is already durable; delivery failure
	// is logged, not rolled back. The allocated reply ID stays valid
	// for the replier's next attempt.
	if err := r.deliverToUser(ctx, recipient, "New reply to post "+target.String(), notice); err != nil {
		r.logger.Error("reply delivery failed", "post_id", target.Post, "error", err)
	}

	return nil
}

// deliverToUser resolves the recipient and sends a notice to their
// direct-message channel. Resolution mirrors the transport's "find the
// user" step: a recipient the transport no longer knows is a delivery
// failure, not a relay error.
func (r *Relay) deliverToUser(ctx context.Context, user ref.UserID, text string, card Card) error {
	handle, err := r.messenger.ResolveUser(ctx, user)
	if err != nil {
		return fmt.Errorf("resolving recipient: %w", err)
	}
	return r.messenger.SendToUser(ctx, handle.ID, text, card)
}
