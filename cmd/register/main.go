// Command register runs the Beam onboarding wizard in a terminal. It is the
// reference front end for pkg/wizard; the hosted product drives the same flow
// from a browser.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"beam/pkg/beamclient"
	"beam/pkg/wizard"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "Beam API base URL")
	flag.Parse()

	if err := run(*apiURL); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(apiURL string) error {
	ctx := context.Background()
	client := beamclient.New(apiURL)
	in := bufio.NewReader(os.Stdin)

	session, err := wizard.NewSession(ctx, wizard.NewBeamBackend(client), wizard.DefaultSteps())
	if err != nil {
		// Init failure is fatal to the whole flow.
		return err
	}
	fmt.Printf("Registration started (session %s)\n", session.ID())

	for session.Phase() != wizard.PhaseDone {
		fmt.Printf("\n-- %s (%.0f%%) --\n", session.State(), session.Progress())
		switch session.State() {
		case "step_1", "step_2":
			if err := promptFields(in, session); err != nil {
				return err
			}
		case "step_3":
			if err := promptDocuments(ctx, in, session); err != nil {
				return err
			}
		case "step_4":
			if err := promptPlan(ctx, in, client, session); err != nil {
				return err
			}
		case "review":
			if err := promptFinalize(ctx, in, session); err != nil {
				return err
			}
			continue
		}
		if session.Phase() == wizard.PhaseDone {
			break
		}
		if err := session.Next(ctx); err != nil {
			var verr *wizard.ValidationError
			if errors.As(err, &verr) {
				fmt.Printf("  ! %s\n", verr.Message)
				continue
			}
			fmt.Printf("  ! %v\n", err)
		}
	}

	fmt.Println("\nApplication submitted. You will be notified once it has been reviewed.")
	return nil
}

func promptFields(in *bufio.Reader, s *wizard.Session) error {
	steps := wizard.DefaultSteps()
	step := steps[s.Step()-1]
	for _, field := range step.Required {
		v, err := prompt(in, fmt.Sprintf("%s (required)", field))
		if err != nil {
			return err
		}
		s.SetField(field, v)
	}
	for _, field := range step.Optional {
		v, err := prompt(in, fmt.Sprintf("%s (optional)", field))
		if err != nil {
			return err
		}
		if v != "" {
			s.SetField(field, v)
		}
	}
	return nil
}

func promptDocuments(ctx context.Context, in *bufio.Reader, s *wizard.Session) error {
	for _, docType := range []string{wizard.DocTypeBusinessLicense, wizard.DocTypeTRNCertificate} {
		path, err := prompt(in, fmt.Sprintf("path to %s file (blank to skip)", docType))
		if err != nil {
			return err
		}
		if path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("  ! %v\n", err)
			continue
		}
		if err := s.Upload(ctx, docType, filepath.Base(path), content); err != nil {
			fmt.Printf("  ! %v\n", err)
			continue
		}
		fmt.Printf("  uploaded %s\n", filepath.Base(path))
	}
	return nil
}

func promptPlan(ctx context.Context, in *bufio.Reader, client *beamclient.Client, s *wizard.Session) error {
	plans, err := client.Plans(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Available plans:")
	for i, p := range plans {
		fmt.Printf("  %d. %s — %.2f AED/month (%s)\n", i+1, p.Name, p.PriceMonthly, p.Description)
	}
	choice, err := prompt(in, "plan number")
	if err != nil {
		return err
	}
	var idx int
	if _, err := fmt.Sscanf(choice, "%d", &idx); err != nil || idx < 1 || idx > len(plans) {
		fmt.Println("  ! invalid choice")
		return nil
	}
	s.SelectPlan(plans[idx-1].ID)
	return nil
}

func promptFinalize(ctx context.Context, in *bufio.Reader, s *wizard.Session) error {
	sum := s.Review()
	fmt.Println("Review your application:")
	for _, sec := range sum.Sections {
		fmt.Printf("  [%s]\n", sec.Step)
		for k, v := range sec.Fields {
			fmt.Printf("    %s: %s\n", k, v)
		}
	}
	for _, doc := range sum.Documents {
		fmt.Printf("  [document] %s: %s\n", doc.Type, doc.FileName)
	}

	answer, err := prompt(in, "accept terms and submit? (yes/no)")
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		fmt.Println("  not submitted")
		return nil
	}
	s.AcceptTerms(true)
	if err := s.Finalize(ctx); err != nil {
		fmt.Printf("  ! submission failed: %v\n  you can submit again\n", err)
	}
	return nil
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
