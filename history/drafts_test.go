package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/resume-mailer/kv/memory"
	"github.com/pure-golang/resume-mailer/kv/noop"
)

func TestDrafts_Lifecycle(t *testing.T) {
	mem := memory.NewStore(0)
	defer mem.Close()
	d := NewDrafts(mem, DraftConfig{})
	ctx := context.Background()

	_, err := d.Get(ctx, me)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	saved, err := d.Save(ctx, me, Draft{
		Recipients:  []string{"a@x.com"},
		Subject:     "Hi",
		Body:        "Body",
		ResumeName:  "cv.pdf",
		ResumeData:  "data:application/pdf;base64,JVBERg==",
		Attachments: []DraftAttachment{{Name: "cover.txt", Data: "data:text/plain;base64,aGk="}},
	})
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := d.Get(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, got.Recipients)
	assert.Equal(t, "cv.pdf", got.ResumeName)
	require.Len(t, got.Attachments, 1)
	assert.True(t, saved.UpdatedAt.Equal(got.UpdatedAt))

	_, err = d.Get(ctx, other)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	require.NoError(t, d.Clear(ctx, me))
	_, err = d.Get(ctx, me)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDrafts_TTL(t *testing.T) {
	mem := memory.NewStore(0)
	defer mem.Close()
	d := NewDrafts(mem, DraftConfig{TTL: 20 * time.Millisecond})
	ctx := context.Background()

	_, err := d.Save(ctx, me, Draft{Subject: "x"})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, err = d.Get(ctx, me)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDrafts_Corrupt(t *testing.T) {
	mem := memory.NewStore(0)
	defer mem.Close()
	d := NewDrafts(mem, DraftConfig{})
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, me.key(draftKeyPrefix), "{not json", 0))
	_, err := d.Get(ctx, me)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDraftNotFound)
}

func TestDrafts_Noop(t *testing.T) {
	d := NewDrafts(noop.NewStore(), DraftConfig{})
	ctx := context.Background()

	_, err := d.Save(ctx, me, Draft{Subject: "x"})
	require.NoError(t, err)
	_, err = d.Get(ctx, me)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDrafts_IncompleteOwner(t *testing.T) {
	d := NewDrafts(noop.NewStore(), DraftConfig{})
	ctx := context.Background()

	noAccount := Owner{Client: "client-1"}
	_, err := d.Get(ctx, noAccount)
	assert.ErrorIs(t, err, ErrNoAccount)
	_, err = d.Save(ctx, noAccount, Draft{})
	assert.ErrorIs(t, err, ErrNoAccount)
	assert.ErrorIs(t, d.Clear(ctx, noAccount), ErrNoAccount)

	noClient := Owner{Account: "me@gmail.com"}
	_, err = d.Get(ctx, noClient)
	assert.ErrorIs(t, err, ErrNoClient)
	_, err = d.Save(ctx, noClient, Draft{})
	assert.ErrorIs(t, err, ErrNoClient)
}

func TestDrafts_ScopedByClient(t *testing.T) {
	mem := memory.NewStore(0)
	defer mem.Close()
	d := NewDrafts(mem, DraftConfig{})
	ctx := context.Background()

	_, err := d.Save(ctx, me, Draft{ResumeData: "data:application/pdf;base64,JVBERg=="})
	require.NoError(t, err)

	_, err = d.Get(ctx, meAgain)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	require.NoError(t, d.Clear(ctx, meAgain))
	got, err := d.Get(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, "data:application/pdf;base64,JVBERg==", got.ResumeData)
}
