package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

// GuestPasswordData dữ liệu cho template email mật khẩu guest
type GuestPasswordData struct {
	Name     string
	Email    string
	Password string
	LoginURL string
}

// BookingStatusData dữ liệu cho template email kết quả booking
type BookingStatusData struct {
	Name        string
	ProductName string
	BookingCode string
	CreatedAt   string
}

// GomailMailer gửi email qua SMTP, mọi method chạy async và nuốt lỗi.
type GomailMailer struct{}

func NewGomailMailer() *GomailMailer {
	return &GomailMailer{}
}

func (m *GomailMailer) SendGuestPassword(to, name, password string) {
	go func() { // Async để không delay response
		body, err := renderTemplate("templates/guest_password.html", GuestPasswordData{
			Name:     name,
			Email:    to,
			Password: password,
			LoginURL: os.Getenv("FRONTEND_URL") + "/login",
		})
		if err != nil {
			log.Printf("Lỗi render template email: %v", err)
			return
		}
		sendMail(to, "Tài khoản Domicare của bạn", body, nil)
	}()
}

func (m *GomailMailer) SendBookingAccepted(to, name, productName string, bookingID uint, createdAt time.Time) {
	go func() {
		code := fmt.Sprintf("DC-%d", bookingID)
		body, err := renderTemplate("templates/booking_accepted.html", BookingStatusData{
			Name:        name,
			ProductName: productName,
			BookingCode: code,
			CreatedAt:   createdAt.Format("02/01/2006 15:04"),
		})
		if err != nil {
			log.Printf("Lỗi render template email: %v", err)
			return
		}
		// QR mã booking đính kèm để nhân viên quét khi đến nơi
		qr, err := GenerateQRCode(code, 256)
		if err != nil {
			log.Printf("Lỗi tạo QR code: %v", err)
			qr = nil
		}
		sendMail(to, "Đơn đặt dịch vụ "+code+" đã được xác nhận", body, qr)
	}()
}

func (m *GomailMailer) SendBookingRejected(to, name, productName string, createdAt time.Time) {
	go func() {
		body, err := renderTemplate("templates/booking_rejected.html", BookingStatusData{
			Name:        name,
			ProductName: productName,
			CreatedAt:   createdAt.Format("02/01/2006 15:04"),
		})
		if err != nil {
			log.Printf("Lỗi render template email: %v", err)
			return
		}
		sendMail(to, "Đơn đặt dịch vụ của bạn đã bị từ chối", body, nil)
	}()
}

func renderTemplate(path string, data any) (string, error) {
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return "", err
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

func sendMail(to, subject, body string, qr []byte) {
	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")

	port, _ := strconv.Atoi(portStr)

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	if qr != nil {
		msg.Attach("booking_qr.png", gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(qr)
			return err
		}))
	}

	d := gomail.NewDialer(host, port, username, password)
	if err := d.DialAndSend(msg); err != nil {
		log.Printf("Lỗi gửi email: %v", err)
	}
}
