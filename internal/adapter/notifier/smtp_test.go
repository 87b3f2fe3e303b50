package notifier

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/custos-io/custos/internal/config"
	"github.com/custos-io/custos/internal/domain"
)

func TestSMTPNotifier(t *testing.T) {
	Convey("Given an SMTPNotifier", t, func() {
		cfg := &config.EmailConfig{
			SMTPHost: "mail.internal",
			SMTPPort: 587,
			Username: "backup_svc",
			Password: "secret",
			From:     "custos@internal",
			To:       "ops@internal",
		}

		Convey("Send method", func() {
			Convey("When delivery succeeds", func() {
				var gotAddr, gotFrom string
				var gotTo []string
				var gotMsg []byte

				n := NewSMTP(cfg)
				n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
					gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
					return nil
				}

				err := n.Send(context.Background(), "Backup Success: orders", "Backup file: /var/backups/x.bak")

				Convey("It should open one session with the configured endpoint", func() {
					So(err, ShouldBeNil)
					So(gotAddr, ShouldEqual, "mail.internal:587")
					So(gotFrom, ShouldEqual, "custos@internal")
					So(gotTo, ShouldResemble, []string{"ops@internal"})
				})

				Convey("It should carry subject and body in the message", func() {
					So(err, ShouldBeNil)
					So(string(gotMsg), ShouldContainSubstring, "Subject: Backup Success: orders")
					So(string(gotMsg), ShouldContainSubstring, "To: ops@internal")
					So(string(gotMsg), ShouldContainSubstring, "Backup file: /var/backups/x.bak")
				})
			})

			Convey("When the relay is unreachable", func() {
				n := NewSMTP(cfg)
				n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
					return errors.New("dial tcp: connection refused")
				}

				err := n.Send(context.Background(), "Backup Failed: orders", "boom")

				Convey("It should return a TransportError", func() {
					So(err, ShouldNotBeNil)

					var tErr *domain.TransportError
					So(errors.As(err, &tErr), ShouldBeTrue)
					So(tErr.Channel, ShouldEqual, "email")
				})
			})
		})

		Convey("Channel method", func() {
			So(NewSMTP(cfg).Channel(), ShouldEqual, "email")
		})
	})
}
