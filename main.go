/* main.go
 * The "main" method for running the tracker CLI. For details about the engine see `readme.md`
 * Usage: go run main.go -user="<id>" -log="\"Sled Push\" 120"
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"hyrox-tracker/engine"
	"hyrox-tracker/engine/catalog"
	"hyrox-tracker/engine/shared"

	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()

	// Identity flags: the engine takes the acting user explicitly on every call, never from ambient state
	userPtr := flag.String("user", "", "Acting user id")
	namePtr := flag.String("name", "", "Acting user display name")
	emailPtr := flag.String("email", "", "Acting user email")

	// Operation flags
	seedPtr := flag.String("seed", "", "Path to a YAML catalog seed file")
	logPtr := flag.String("log", "", "Record a training log: '\"<exercise>\" <amount> [weight]'")
	bestsPtr := flag.Bool("bests", false, "Print personal bests")
	readinessPtr := flag.Bool("readiness", false, "Print per-exercise and overall readiness")
	teamPtr := flag.String("team", "", "Team id for team operations")
	createTeamPtr := flag.String("create-team", "", "Create a team with the given name")
	eventPtr := flag.String("event", "HYROX Competition", "Event name when creating a team")
	invitePtr := flag.String("invite", "", "Invite an email address to the team")
	acceptPtr := flag.String("accept", "", "Accept an invite by id")
	declinePtr := flag.String("decline", "", "Decline an invite by id")
	withdrawPtr := flag.String("withdraw", "", "Withdraw (delete) an invite by id")
	invitesPtr := flag.Bool("invites", false, "List the team's invites")
	pendingPtr := flag.Bool("pending", false, "List pending invites addressed to -email")
	leaderboardPtr := flag.Bool("leaderboard", false, "Print the team leaderboard")

	flag.Parse()

	if err != nil {
		log.Println("No .env file loaded, relying on environment")
	}

	eng, err := engine.NewEngine(os.Getenv("TRACKER_DB_NAME"), os.Getenv("MONGO_URI"))
	if err != nil {
		log.Fatalf("failed to initialize engine: %v", err)
	}
	defer func() {
		if err = eng.Store.GetClient().Disconnect(context.TODO()); err != nil {
			panic(err)
		}
	}()

	user := shared.User{UserID: *userPtr, FullName: *namePtr, Email: *emailPtr}

	if *seedPtr != "" {
		exercises, err := catalog.Load(*seedPtr)
		if err != nil {
			log.Fatalf("failed to load catalog: %v", err)
		}
		if err := eng.SeedCatalog(exercises); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
		fmt.Printf("Seeded %d exercises\n", len(exercises))
	}

	if *logPtr != "" {
		name, amount, weight, err := parseLogArg(*logPtr)
		if err != nil {
			log.Fatalf("invalid -log argument: %v", err)
		}
		if err := eng.RecordTraining(user, name, amount, weight); err != nil {
			log.Fatalf("failed to record training: %v", err)
		}
		fmt.Printf("Logged %s %v\n", name, amount)
	}

	if *bestsPtr {
		bests, err := eng.PersonalBests(user.UserID)
		if err != nil {
			log.Fatalf("failed to compute personal bests: %v", err)
		}
		for _, best := range bests {
			fmt.Printf("- %s: %v/%v %s\n", best.ExerciseName, best.BestAmount, best.TargetAmount, best.Unit)
		}
	}

	if *readinessPtr {
		report, err := eng.Readiness(user.UserID)
		if err != nil {
			log.Fatalf("failed to compute readiness: %v", err)
		}
		for _, score := range report.Scores {
			fmt.Printf("- %s: %d%%\n", score.ExerciseName, score.Percent)
		}
		fmt.Printf("Overall: %d%%\n", report.OverallPercent)
	}

	if *createTeamPtr != "" {
		team, err := eng.CreateTeam(user, *createTeamPtr, *eventPtr, nil)
		if err != nil {
			log.Fatalf("failed to create team: %v", err)
		}
		fmt.Printf("Created team %s (%s)\n", team.Name, team.ID.Hex())
	}

	if *invitePtr != "" {
		invite, err := eng.InviteMember(*teamPtr, user, *invitePtr)
		if err != nil {
			log.Fatalf("failed to invite: %v", err)
		}
		fmt.Printf("Invite %s sent to %s\n", invite.ID.Hex(), invite.Email)
	}

	if *acceptPtr != "" {
		if err := eng.AcceptInvite(*acceptPtr, user); err != nil {
			log.Fatalf("failed to accept invite: %v", err)
		}
		fmt.Println("Invite accepted")
	}

	if *declinePtr != "" {
		if err := eng.DeclineInvite(*declinePtr, user.Email); err != nil {
			log.Fatalf("failed to decline invite: %v", err)
		}
		fmt.Println("Invite declined")
	}

	if *withdrawPtr != "" {
		if err := eng.WithdrawInvite(*withdrawPtr); err != nil {
			log.Fatalf("failed to withdraw invite: %v", err)
		}
		fmt.Println("Invite withdrawn")
	}

	if *invitesPtr {
		invites, err := eng.TeamInvites(*teamPtr)
		if err != nil {
			log.Fatalf("failed to list invites: %v", err)
		}
		for _, invite := range invites {
			fmt.Printf("- %s %s (%s)\n", invite.ID.Hex(), invite.Email, invite.Status)
		}
	}

	if *pendingPtr {
		invites, err := eng.PendingInvitesFor(user.Email)
		if err != nil {
			log.Fatalf("failed to list pending invites: %v", err)
		}
		for _, invite := range invites {
			fmt.Printf("- %s from team %s\n", invite.ID.Hex(), invite.TeamID.Hex())
		}
	}

	if *leaderboardPtr {
		board, err := eng.Leaderboard(*teamPtr)
		if err != nil {
			log.Fatalf("failed to get leaderboard: %v", err)
		}
		fmt.Printf("Team readiness: %d%%\n", roundDisplayPercent(board.TeamReadiness))
		for _, entry := range board.Entries {
			name := entry.FullName
			if name == "" {
				name = entry.UserID
			}
			fmt.Printf("%d. %s, %d%% [%s]\n", entry.Rank+1, name, entry.Percent, entry.Medal)
		}
	}
}
