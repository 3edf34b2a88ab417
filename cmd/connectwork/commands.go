package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"connectwork/internal/api"
	"connectwork/internal/models"
)

const timeFormat = "02 Jan 2006 15:04"

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	email := fs.String("email", "", "Account email")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("missing required flags: email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(a.stdout, "Password: ")
		var err error
		password, err = readPassword(a.stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(a.stdout)
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	raw, err := a.client.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	if err := a.sessions.Login(ctx, raw); err != nil {
		return err
	}

	user, _ := a.sessions.Current()
	fmt.Fprintf(a.stdout, "Logged in as %s (%s)\n", user.Nome, user.Email)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	a.sessions.Logout(ctx)
	fmt.Fprintln(a.stdout, "Logged out.")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	refresh := fs.Bool("refresh", false, "Fetch the latest profile from the server first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	user, _ := a.sessions.Current()
	if *refresh {
		var err error
		user, err = a.sessions.RefreshUserData(ctx)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(a.stdout, "%s <%s>\n", user.Nome, user.Email)
	if a.sessions.Role() != "" {
		fmt.Fprintf(a.stdout, "Role:   %s\n", a.sessions.Role())
	}
	if user.School != "" {
		fmt.Fprintf(a.stdout, "School: %s\n", user.School)
	}
	if user.Course != "" {
		fmt.Fprintf(a.stdout, "Course: %s", user.Course)
		if user.UserClass != "" {
			fmt.Fprintf(a.stdout, " (%s)", user.UserClass)
		}
		fmt.Fprintln(a.stdout)
	}
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	nome := fs.String("nome", "", "Full name")
	email := fs.String("email", "", "Account email")
	school := fs.String("school", "", "School")
	course := fs.String("course", "", "Course")
	class := fs.String("class", "", "Class")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *nome == "" || *email == "" {
		return errors.New("missing required flags: nome, email")
	}

	fmt.Fprint(a.stdout, "Password: ")
	password, err := readPassword(a.stdin)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(a.stdout)
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	if err := a.client.Register(ctx, api.RegisterRequest{
		Nome:      *nome,
		Email:     *email,
		Password:  password,
		School:    *school,
		Course:    *course,
		UserClass: *class,
	}); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Account created. Check %s for a verification code, then run: connectwork verify -email %s -code <code>\n", *email, *email)
	return nil
}

func (a *app) cmdVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	email := fs.String("email", "", "Account email")
	code := fs.String("code", "", "Verification code")
	resend := fs.Bool("resend", false, "Request a fresh code instead of verifying")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("missing required flags: email")
	}

	if *resend {
		if err := a.client.SendCode(ctx, *email); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Verification code sent to %s\n", *email)
		return nil
	}
	if *code == "" {
		return errors.New("missing required flags: code")
	}
	if err := a.client.VerifyCode(ctx, *email, *code); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Account verified. You can now log in.")
	return nil
}

func (a *app) cmdFeed(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	posts, err := a.client.Feed(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Fprintln(a.stdout, "The feed is empty.")
		return nil
	}
	for _, p := range posts {
		printPost(a, p)
	}
	return nil
}

func printPost(a *app, p models.Post) {
	liked := ""
	if p.Liked {
		liked = " (liked)"
	}
	fmt.Fprintf(a.stdout, "#%d %s - %s\n", p.ID, p.Author, p.CreatedAt.Format(timeFormat))
	fmt.Fprintf(a.stdout, "  %s\n", p.Content)
	fmt.Fprintf(a.stdout, "  %d likes%s, %d comments\n", p.Likes, liked, len(p.Comments))
}

func (a *app) cmdPost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	message := fs.String("m", "", "Post content")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	content := *message
	if content == "" {
		content = strings.Join(fs.Args(), " ")
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("post content cannot be empty")
	}

	post, err := a.client.CreatePost(ctx, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Posted #%d\n", post.ID)
	return nil
}

func (a *app) cmdLike(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("like", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	id := fs.Int64("id", 0, "Post ID")
	undo := fs.Bool("undo", false, "Remove the like instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("missing required flags: id")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if *undo {
		if err := a.client.UnlikePost(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Unliked #%d\n", *id)
		return nil
	}
	if err := a.client.LikePost(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Liked #%d\n", *id)
	return nil
}

func (a *app) cmdComment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("comment", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	id := fs.Int64("id", 0, "Post ID")
	message := fs.String("m", "", "Comment content")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 || strings.TrimSpace(*message) == "" {
		return errors.New("missing required flags: id, m")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	comment, err := a.client.CommentPost(ctx, *id, *message)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Commented on #%d (comment %d)\n", *id, comment.ID)
	return nil
}

func (a *app) cmdVacancies(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("vacancies", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	id := fs.Int64("id", 0, "Show one vacancy by ID")
	query := fs.String("q", "", "Search query")
	location := fs.String("location", "", "Filter by location")
	modality := fs.String("modality", "", "Filter by modality (remote|hybrid|onsite)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if *id != 0 {
		v, err := a.client.Vacancy(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "#%d %s - %s\n", v.ID, v.Title, v.Company)
		fmt.Fprintf(a.stdout, "%s, %s", v.Location, v.Modality)
		if v.Salary != "" {
			fmt.Fprintf(a.stdout, ", %s", v.Salary)
		}
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, v.Description)
		return nil
	}

	vacancies, err := a.client.Vacancies(ctx, api.VacancyFilter{
		Query:    *query,
		Location: *location,
		Modality: *modality,
	})
	if err != nil {
		return err
	}
	if len(vacancies) == 0 {
		fmt.Fprintln(a.stdout, "No vacancies found.")
		return nil
	}
	for _, v := range vacancies {
		fmt.Fprintf(a.stdout, "#%d %s - %s (%s, %s)\n", v.ID, v.Title, v.Company, v.Location, v.Modality)
	}
	return nil
}

func (a *app) cmdApply(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	id := fs.Int64("id", 0, "Vacancy ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("missing required flags: id")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	application, err := a.client.Apply(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Applied to vacancy #%d (application %d, status %s)\n", *id, application.ID, application.Status)
	return nil
}

func (a *app) cmdApplications(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	user, _ := a.sessions.Current()
	applications, err := a.client.Applications(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(applications) == 0 {
		fmt.Fprintln(a.stdout, "No applications yet.")
		return nil
	}
	for _, submitted := range applications {
		fmt.Fprintf(a.stdout, "#%d vacancy %d - %s (%s)\n", submitted.ID, submitted.VacancyID, submitted.Status, submitted.CreatedAt.Format(timeFormat))
	}
	return nil
}

func (a *app) cmdNotifications(ctx context.Context, args []string) error {
	action := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action, args = args[0], args[1:]
	}
	fs := flag.NewFlagSet("notifications", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	id := fs.Int64("id", 0, "Notification ID (for read/delete)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	// Every action starts from a fresh server snapshot.
	if err := a.center.Fetch(ctx); err != nil {
		return err
	}

	switch action {
	case "list":
		return a.printNotifications()
	case "read":
		if *id == 0 {
			return errors.New("missing required flags: id")
		}
		if err := a.center.MarkRead(ctx, *id); err != nil {
			return err
		}
	case "read-all":
		for _, n := range a.center.Items() {
			if n.Read {
				continue
			}
			if err := a.center.MarkRead(ctx, n.ID); err != nil {
				return err
			}
		}
	case "delete":
		if *id == 0 {
			return errors.New("missing required flags: id")
		}
		if err := a.center.Delete(ctx, *id); err != nil {
			return err
		}
	case "delete-all":
		if err := a.center.DeleteAll(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown notifications action %q", action)
	}
	return a.printNotifications()
}

func (a *app) printNotifications() error {
	counts := a.center.Counts()
	fmt.Fprintf(a.stdout, "%d notifications, %d unread\n", counts.Total, counts.Unread)
	for _, n := range a.center.Sorted() {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Fprintf(a.stdout, "%s #%d %s %s on post %d - %s\n",
			marker, n.ID, n.User, describeKind(n.Kind), n.PostID, n.CreatedAt.Format(timeFormat))
	}
	return nil
}

func describeKind(kind string) string {
	switch kind {
	case models.NotificationLike:
		return "liked"
	case models.NotificationComment:
		return "commented"
	default:
		return kind
	}
}
