package sms

import (
	"context"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioProvider struct {
	client     *twilio.RestClient
	fromNumber string
}

func NewTwilioProvider(accountSID, authToken, fromNumber string) *TwilioProvider {
	return &TwilioProvider{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		fromNumber: fromNumber,
	}
}

func (t *TwilioProvider) SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error) {
	from := request.From
	if from == "" {
		from = t.fromNumber
	}

	params := &api.CreateMessageParams{}
	params.SetTo(request.To)
	params.SetFrom(from)
	params.SetBody(request.Message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return &SMSResponse{Status: "failed", Error: err.Error()}, err
	}

	out := &SMSResponse{}
	if resp.Sid != nil {
		out.MessageID = *resp.Sid
	}
	if resp.Status != nil {
		out.Status = *resp.Status
	}
	return out, nil
}

// SendBulkSMS delivers each message individually; per-recipient failures
// land in the matching response rather than aborting the batch. A
// cancelled context stops the remainder.
func (t *TwilioProvider) SendBulkSMS(ctx context.Context, requests []*SMSRequest) ([]*SMSResponse, error) {
	responses := make([]*SMSResponse, 0, len(requests))
	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			return responses, err
		}

		resp, err := t.SendSMS(ctx, req)
		if err != nil {
			resp = &SMSResponse{Status: "failed", Error: err.Error()}
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
