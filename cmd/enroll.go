package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kozaktomas/face-attendance/internal/capture"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/registry"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Enroll a student or teacher with a reference face capture",
	Long: `Enroll a new student or teacher. The identity is validated first; only then is
the camera opened to capture the reference face. Exactly one face must be in frame.

Students need --class, which must be one of the configured classes
(see "attendance classes"). Teachers have no class.

With --image the reference is taken from a photo instead of the camera.`,
	Example: `  attendance enroll --role student --id S1024 --name "Alice Mbah" --class "Form One"
  attendance enroll --role teacher --id T07 --name "Mr Ndi" --image ndi.jpg`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("id", "", "Person id (unique across students and teachers)")
	enrollCmd.Flags().String("name", "", "Full name")
	enrollCmd.Flags().String("role", "student", "Role: student or teacher")
	enrollCmd.Flags().String("class", "", "Class (students only)")
	enrollCmd.Flags().String("image", "", "Take the reference face from this image file instead of the camera")
	_ = enrollCmd.MarkFlagRequired("id")
	_ = enrollCmd.MarkFlagRequired("name")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	imagePath := mustGetString(cmd, "image")
	enrollment := registry.Enrollment{
		ID:    mustGetString(cmd, "id"),
		Name:  mustGetString(cmd, "name"),
		Role:  parseRole(mustGetString(cmd, "role")),
		Class: mustGetString(cmd, "class"),
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{camera: imagePath == ""})
	if err != nil {
		return err
	}
	defer a.Close()

	if imagePath != "" {
		err = enrollFromImage(ctx, a, enrollment, imagePath)
	} else {
		err = a.registry.Register(ctx, enrollment, a.capturer)
	}
	if err != nil {
		return err
	}

	p, err := a.registry.Lookup(ctx, enrollment.ID, enrollment.Role)
	if err != nil {
		return err
	}
	fmt.Printf("Enrolled %s %s (%s)", p.Role, p.Name, p.ID)
	if p.Class != "" {
		fmt.Printf(" in %s", p.Class)
	}
	fmt.Println()
	return nil
}

// enrollFromImage encodes a still photo and enrolls it. The photo must show one face.
func enrollFromImage(ctx context.Context, a *app, e registry.Enrollment, path string) error {
	if _, err := a.registry.Validate(e); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	faces, err := a.encoder.DetectAndEncode(ctx, capture.Frame{Seq: 1, Data: data, CapturedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if len(faces) != 1 {
		return fmt.Errorf("%w: %s shows %d faces, need exactly one", capture.ErrCaptureFailed, path, len(faces))
	}
	return a.registry.Enroll(ctx, e, faces[0])
}
