// Package notification renders and sends the emails the service layer triggers.
// Delivery itself is behind the Sender interface; LogSender only records what would have been sent.
package notification
